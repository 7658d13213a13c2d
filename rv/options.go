package rv

import (
	"io"
	"log/slog"
	"runtime"

	"github.com/cwbudde/algo-nirspec/fit"
)

// Defaults of the estimator.
const (
	DefaultTrials             = 500
	DefaultOversample         = 10
	DefaultWindow             = 1000
	DefaultMaxFailureFraction = 0.5
	DefaultSeed               = 1

	// DefaultNoiseScale is the standard deviation of the unit noise that
	// multiplies the uncertainties, so perturbations are about a third of
	// the quoted uncertainty.
	DefaultNoiseScale = 0.34

	// HistoricalVelocityPerPixel is the km/s per oversampled pixel of the
	// high-resolution setup the estimator was first calibrated on.
	HistoricalVelocityPerPixel = 0.426

	// logEvery is the trial interval of debug fit logging.
	logEvery = 50
)

type config struct {
	trials             int
	oversample         int
	noiseScale         float64
	window             int
	velocityPerPixel   float64 // 0 derives it from the grid
	seed               uint64
	workers            int
	maxFailureFraction float64
	initialGuess       *fit.Gaussian
	logger             *slog.Logger

	// rejectTrial, when set, fails the trials it returns true for.
	rejectTrial func(trial int) bool
}

func defaultConfig() config {
	return config{
		trials:             DefaultTrials,
		oversample:         DefaultOversample,
		noiseScale:         DefaultNoiseScale,
		window:             DefaultWindow,
		seed:               DefaultSeed,
		workers:            runtime.GOMAXPROCS(0),
		maxFailureFraction: DefaultMaxFailureFraction,
		logger:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Option configures Estimate.
type Option func(*config)

// WithTrials sets the number of Monte-Carlo trials. Values below 1 are ignored.
func WithTrials(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.trials = n
		}
	}
}

// WithOversample sets the integer oversampling factor. Values below 1 are ignored.
func WithOversample(factor int) Option {
	return func(c *config) {
		if factor > 0 {
			c.oversample = factor
		}
	}
}

// WithNoiseScale sets the standard deviation of the unit noise multiplying
// the uncertainties. Zero disables the perturbation.
func WithNoiseScale(scale float64) Option {
	return func(c *config) {
		if scale >= 0 {
			c.noiseScale = scale
		}
	}
}

// WithWindow sets the number of correlation samples around zero lag that
// the peak fit sees. Values below 4 are ignored.
func WithWindow(samples int) Option {
	return func(c *config) {
		if samples >= 4 {
			c.window = samples
		}
	}
}

// WithVelocityPerPixel fixes the km/s per oversampled pixel instead of
// deriving it from the logarithmic grid.
func WithVelocityPerPixel(kms float64) Option {
	return func(c *config) {
		if kms > 0 {
			c.velocityPerPixel = kms
		}
	}
}

// WithSeed sets the seed of the per-trial noise streams.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithWorkers bounds the number of trials running concurrently.
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxFailureFraction sets the fraction of trials allowed to fail before
// Estimate gives up.
func WithMaxFailureFraction(f float64) Option {
	return func(c *config) {
		if f >= 0 && f <= 1 {
			c.maxFailureFraction = f
		}
	}
}

// WithInitialGuess starts every peak fit from g, in window coordinates,
// instead of deriving the start from the correlation window.
func WithInitialGuess(g fit.Gaussian) Option {
	return func(c *config) { c.initialGuess = &g }
}

// WithLogger receives a debug record of every 50th trial fit.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
