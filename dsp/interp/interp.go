package interp

import (
	"errors"
	"fmt"
	"math"

	gonuminterp "gonum.org/v1/gonum/interp"
)

// Errors returned by the resampling functions.
var (
	ErrTooFewPoints   = errors.New("interp: need at least two points")
	ErrLengthMismatch = errors.New("interp: abscissa and ordinate lengths differ")
	ErrInvalidFactor  = errors.New("interp: zoom factor must be >= 1")
	ErrNotIncreasing  = errors.New("interp: abscissa not strictly increasing")
)

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// Linear evaluates the piecewise-linear interpolant through (xs, ys) at every
// point of at. xs must be strictly increasing (ErrNotIncreasing otherwise);
// NaN abscissae are rejected the same way. Points left of xs[0] take
// ys[0], points right of the last abscissa take the last ordinate. NaN
// ordinates propagate to the adjacent segments only.
func Linear(at, xs, ys []float64) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(xs), len(ys))
	}
	if len(xs) < 2 {
		return nil, ErrTooFewPoints
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return nil, fmt.Errorf("%w: index %d (%g after %g)", ErrNotIncreasing, i, xs[i], xs[i-1])
		}
	}

	var pl gonuminterp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("interp: %w", err)
	}

	out := make([]float64, len(at))
	for i, x := range at {
		out[i] = pl.Predict(x)
	}

	return out, nil
}

// ZoomLen returns the length of x zoomed by factor.
func ZoomLen(n, factor int) int { return n * factor }

// Zoom upsamples the uniformly sampled series x by an integer factor using
// cubic Hermite interpolation. The result has len(x)*factor samples; output
// sample i sits at input position i*(n-1)/(N-1), so the first and last
// samples coincide with the input end points. Neighbors beyond the ends are
// linearly extrapolated, so straight lines are reproduced exactly.
func Zoom(x []float64, factor int) ([]float64, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFactor, factor)
	}

	n := len(x)
	out := make([]float64, ZoomLen(n, factor))

	switch {
	case n == 0:
		return out, nil
	case n == 1 || factor == 1:
		for i := range out {
			out[i] = x[i/factor]
		}
		return out, nil
	}

	at := func(i int) float64 {
		switch {
		case i < 0:
			return 2*x[0] - x[1]
		case i > n-1:
			return 2*x[n-1] - x[n-2]
		}
		return x[i]
	}

	scale := float64(n-1) / float64(len(out)-1)
	for i := range out {
		pos := float64(i) * scale
		k := int(math.Floor(pos))
		if k >= n-1 {
			out[i] = x[n-1]
			continue
		}
		out[i] = Hermite4(pos-float64(k), at(k-1), x[k], x[k+1], at(k+2))
	}

	return out, nil
}
