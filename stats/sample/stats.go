// Package sample provides NaN-aware descriptive statistics over sample sets:
// per-bin accumulators for spectral templates, standardization, and normal
// distribution fitting.
//
// Non-finite values (NaN, ±Inf) are skipped everywhere; they mark missing
// samples rather than data.
package sample

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrDegenerate is returned when a set has no spread to standardize by.
var ErrDegenerate = errors.New("sample: zero or undefined standard deviation")

// Stats holds statistics of the finite values of a sample set.
type Stats struct {
	Count    int     // finite values seen
	Skipped  int     // non-finite values ignored
	Mean     float64 // NaN when Count == 0
	Variance float64 // sample variance (n-1); NaN when Count < 2
	Min      float64 // NaN when Count == 0
	MinPos   int     // -1 when Count == 0
	Max      float64 // NaN when Count == 0
	MaxPos   int     // -1 when Count == 0
}

// StdDev returns the square root of the sample variance.
func (s Stats) StdDev() float64 { return math.Sqrt(s.Variance) }

// PopVariance returns the population variance (n denominator).
// NaN when Count == 0.
func (s Stats) PopVariance() float64 {
	switch s.Count {
	case 0:
		return math.NaN()
	case 1:
		return 0
	}
	return s.Variance * float64(s.Count-1) / float64(s.Count)
}

// Accumulator collects statistics incrementally using Welford's online
// algorithm. The zero value is ready to use.
type Accumulator struct {
	n       int
	skipped int
	pos     int
	mean    float64
	m2      float64
	minVal  float64
	minPos  int
	maxVal  float64
	maxPos  int
}

// Add adds one value. Non-finite values are counted as skipped.
func (a *Accumulator) Add(x float64) {
	pos := a.pos
	a.pos++

	if math.IsNaN(x) || math.IsInf(x, 0) {
		a.skipped++
		return
	}

	a.n++
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)

	if a.n == 1 || x < a.minVal {
		a.minVal, a.minPos = x, pos
	}
	if a.n == 1 || x > a.maxVal {
		a.maxVal, a.maxPos = x, pos
	}
}

// Reset clears the accumulator.
func (a *Accumulator) Reset() { *a = Accumulator{} }

// Result returns the statistics of the values added so far.
func (a *Accumulator) Result() Stats {
	if a.n == 0 {
		nan := math.NaN()
		return Stats{Skipped: a.skipped, Mean: nan, Variance: nan, Min: nan, MinPos: -1, Max: nan, MaxPos: -1}
	}

	variance := math.NaN()
	if a.n > 1 {
		variance = a.m2 / float64(a.n-1)
	}

	return Stats{
		Count:    a.n,
		Skipped:  a.skipped,
		Mean:     a.mean,
		Variance: variance,
		Min:      a.minVal,
		MinPos:   a.minPos,
		Max:      a.maxVal,
		MaxPos:   a.maxPos,
	}
}

// Calculate computes the statistics of the finite values in x in one pass.
func Calculate(x []float64) Stats {
	var a Accumulator
	for _, v := range x {
		a.Add(v)
	}
	return a.Result()
}

// Standardize writes (src - mean) / std into dst, using the population
// standard deviation, and returns the mean and std used. dst and src may be
// the same slice. All values of src must be finite.
func Standardize(dst, src []float64) (mean, std float64, err error) {
	if len(dst) != len(src) {
		panic("sample: Standardize length mismatch")
	}

	mean, std = stat.PopMeanStdDev(src, nil)
	if std == 0 || math.IsNaN(std) || math.IsInf(std, 0) {
		return mean, std, ErrDegenerate
	}

	inv := 1 / std
	for i, v := range src {
		dst[i] = (v - mean) * inv
	}

	return mean, std, nil
}

// NormalFit returns the maximum-likelihood normal parameters of the finite
// values in x: their mean and population standard deviation.
// Both are NaN when x holds no finite value.
func NormalFit(x []float64) (mu, sigma float64) {
	s := Calculate(x)
	if s.Count == 0 {
		return math.NaN(), math.NaN()
	}

	return s.Mean, math.Sqrt(s.PopVariance())
}
