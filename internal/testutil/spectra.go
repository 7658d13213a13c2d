package testutil

import (
	"math"
	"math/rand"
)

// Line is a Gaussian absorption feature. Center and Width are in pixels.
type Line struct {
	Center float64
	Width  float64
	Depth  float64
}

// LogGrid returns n wavelengths spaced geometrically from lo to hi.
func LogGrid(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (math.Log(hi) - math.Log(lo)) / float64(n-1)
	for i := range out {
		out[i] = math.Exp(math.Log(lo) + step*float64(i))
	}
	out[0], out[n-1] = lo, hi
	return out
}

// LinearGrid returns n wavelengths spaced evenly from lo to hi.
func LinearGrid(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + step*float64(i)
	}
	out[n-1] = hi
	return out
}

// AbsorptionFlux evaluates a unit continuum with the given lines at n pixel
// positions, displaced by shift pixels (positive shift moves features to
// higher pixel indices).
func AbsorptionFlux(n int, lines []Line, shift float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		x := float64(i) - shift
		v := 1.0
		for _, l := range lines {
			d := (x - l.Center) / l.Width
			v -= l.Depth * math.Exp(-0.5*d*d)
		}
		out[i] = v
	}
	return out
}

// DeterministicNoise generates uniform noise in [-amplitude, amplitude] with a
// fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Const returns a slice of length n filled with value.
func Const(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// NaNs returns a slice of length n filled with NaN.
func NaNs(n int) []float64 {
	return Const(math.NaN(), n)
}
