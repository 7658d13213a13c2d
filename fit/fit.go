// Package fit performs nonlinear least-squares fits of peak profiles.
//
// The Levenberg-Marquardt solver comes from github.com/maorshutman/lm with a
// numerical Jacobian.
package fit

import (
	"errors"
	"fmt"
	"math"

	"github.com/maorshutman/lm"
)

// Errors returned by the fitters.
var (
	ErrTooFewPoints   = errors.New("fit: fewer data points than parameters")
	ErrLengthMismatch = errors.New("fit: x and y lengths differ")
	ErrNoConvergence  = errors.New("fit: solver failed")
	ErrNonFinite      = errors.New("fit: non-finite parameters")
)

// Gaussian is a Gaussian profile on a constant offset:
//
//	f(x) = Amplitude * exp(-(x-Center)^2 / (2*Width^2)) + Offset
type Gaussian struct {
	Amplitude float64
	Center    float64
	Width     float64
	Offset    float64
}

// Eval returns the profile value at x.
func (g Gaussian) Eval(x float64) float64 {
	d := (x - g.Center) / g.Width
	return g.Amplitude*math.Exp(-0.5*d*d) + g.Offset
}

// Finite reports whether every parameter is finite and Width is non-zero.
func (g Gaussian) Finite() bool {
	for _, v := range [...]float64{g.Amplitude, g.Center, g.Width, g.Offset} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return g.Width != 0
}

func (g Gaussian) params() []float64 {
	return []float64{g.Amplitude, g.Center, g.Width, g.Offset}
}

type config struct {
	iterations   int
	objectiveTol float64
}

func defaultConfig() config {
	return config{iterations: 100, objectiveTol: 1e-16}
}

// Option configures a fit.
type Option func(*config)

// WithIterations bounds the number of solver iterations.
func WithIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.iterations = n
		}
	}
}

// WithObjectiveTol sets the objective tolerance at which the solver stops.
func WithObjectiveTol(tol float64) Option {
	return func(c *config) {
		if tol > 0 {
			c.objectiveTol = tol
		}
	}
}

// GuessGaussian derives starting parameters from the data: the center at the
// maximum, the amplitude as peak minus floor, the offset at the floor, and
// a width of a tenth of the x span.
func GuessGaussian(x, y []float64) Gaussian {
	if len(x) == 0 || len(x) != len(y) {
		return Gaussian{Width: 1}
	}

	lo, hi := 0, 0
	for i, v := range y {
		if v > y[hi] {
			hi = i
		}
		if v < y[lo] {
			lo = i
		}
	}

	width := math.Abs(x[len(x)-1]-x[0]) / 10
	if width == 0 {
		width = 1
	}

	return Gaussian{
		Amplitude: y[hi] - y[lo],
		Center:    x[hi],
		Width:     width,
		Offset:    y[lo],
	}
}

// FitGaussian fits a Gaussian plus offset to (x, y) starting from init.
// The returned Width is non-negative.
func FitGaussian(x, y []float64, init Gaussian, opts ...Option) (g Gaussian, err error) {
	if len(x) != len(y) {
		return Gaussian{}, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 4 {
		return Gaussian{}, fmt.Errorf("%w: %d", ErrTooFewPoints, len(x))
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	residual := func(dst, p []float64) {
		for i, xi := range x {
			d := (xi - p[1]) / p[2]
			dst[i] = p[0]*math.Exp(-0.5*d*d) + p[3] - y[i]
		}
	}

	// The solver may panic on a singular system.
	defer func() {
		if r := recover(); r != nil {
			g, err = Gaussian{}, fmt.Errorf("%w: %v", ErrNoConvergence, r)
		}
	}()

	jac := lm.NumJac{Func: residual}
	problem := lm.LMProblem{
		Dim:        4,
		Size:       len(x),
		Func:       residual,
		Jac:        jac.Jac,
		InitParams: init.params(),
		Tau:        1e-6,
		Eps1:       1e-8,
		Eps2:       1e-8,
	}

	res, err := lm.LM(problem, &lm.Settings{Iterations: cfg.iterations, ObjectiveTol: cfg.objectiveTol})
	if err != nil {
		return Gaussian{}, fmt.Errorf("%w: %w", ErrNoConvergence, err)
	}
	if len(res.X) != 4 {
		return Gaussian{}, fmt.Errorf("%w: %d parameters returned", ErrNoConvergence, len(res.X))
	}

	g = Gaussian{
		Amplitude: res.X[0],
		Center:    res.X[1],
		Width:     math.Abs(res.X[2]),
		Offset:    res.X[3],
	}
	if !g.Finite() {
		return Gaussian{}, fmt.Errorf("%w: %+v", ErrNonFinite, g)
	}

	return g, nil
}
