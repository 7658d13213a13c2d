package rv

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-nirspec/fit"
	"github.com/cwbudde/algo-nirspec/spectrum"
	"github.com/cwbudde/algo-nirspec/stats/sample"
)

// Input is the pair of spectra and the known velocity of the standard.
// Both spectra should be cleaned and cover overlapping wavelengths.
type Input struct {
	Target        spectrum.Spectrum
	Standard      spectrum.Spectrum
	StandardRV    float64 // km/s
	StandardRVErr float64 // km/s
}

// Result is a radial velocity estimate.
type Result struct {
	Velocity    float64 // km/s
	Uncertainty float64 // km/s, spread of the shifts plus the standard's error

	ShiftMean   float64 // oversampled pixels; negative for a redshifted target
	ShiftStdDev float64 // oversampled pixels, population standard deviation

	// Shifts holds the shift of every successful trial in trial order.
	Shifts []float64

	Trials           int
	Failed           int
	VelocityPerPixel float64 // km/s per oversampled pixel
	StandardRV       float64
}

// Velocities converts the per-trial shifts into velocities.
func (r Result) Velocities() []float64 {
	out := make([]float64, len(r.Shifts))
	for i, s := range r.Shifts {
		out[i] = r.StandardRV - s*r.VelocityPerPixel
	}
	return out
}

type trialOutcome struct {
	shift float64
	err   error
}

// Estimate measures the velocity of in.Target relative to in.Standard.
//
// Trials whose peak fit fails, is not finite or leaves the correlation
// window are dropped; if more than the allowed fraction fails Estimate
// returns ErrTooManyFailures. Cancelling ctx stops the trials and returns
// the context's error.
func Estimate(ctx context.Context, in Input, opts ...Option) (Result, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	for _, s := range []spectrum.Spectrum{in.Target, in.Standard} {
		if s.Len() < 2 {
			return Result{}, fmt.Errorf("%w: %q has %d", ErrTooShort, s.Object, s.Len())
		}
		if err := s.Validate(); err != nil {
			return Result{}, fmt.Errorf("rv: %q: %w", s.Object, err)
		}
	}

	data, err := prepare(in, cfg.oversample)
	if err != nil {
		return Result{}, err
	}

	runner, err := newTrialRunner(&cfg, data)
	if err != nil {
		return Result{}, err
	}

	outcomes := make([]trialOutcome, cfg.trials)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers)

	for i := range outcomes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			shift, gauss, err := runner.run(i)
			outcomes[i] = trialOutcome{shift: shift, err: err}

			if i%logEvery == 0 {
				logTrial(ctx, &cfg, i, shift, gauss, err)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{
		Trials:     cfg.trials,
		StandardRV: in.StandardRV,
	}
	for _, o := range outcomes {
		if o.err != nil {
			res.Failed++
			continue
		}
		res.Shifts = append(res.Shifts, o.shift)
	}

	if len(res.Shifts) == 0 || float64(res.Failed) > cfg.maxFailureFraction*float64(cfg.trials) {
		return res, fmt.Errorf("%w: %d of %d", ErrTooManyFailures, res.Failed, cfg.trials)
	}

	res.ShiftMean, res.ShiftStdDev = sample.NormalFit(res.Shifts)

	res.VelocityPerPixel = cfg.velocityPerPixel
	if res.VelocityPerPixel == 0 {
		res.VelocityPerPixel = data.velocityPerPixel()
	}

	res.Velocity = in.StandardRV - res.ShiftMean*res.VelocityPerPixel
	res.Uncertainty = res.ShiftStdDev*res.VelocityPerPixel + in.StandardRVErr

	if math.IsNaN(res.Velocity) || math.IsNaN(res.Uncertainty) {
		return res, fmt.Errorf("%w: non-finite estimate", ErrTooManyFailures)
	}

	return res, nil
}

func logTrial(ctx context.Context, cfg *config, i int, shift float64, g fit.Gaussian, err error) {
	if err != nil {
		cfg.logger.DebugContext(ctx, "trial failed", "trial", i, "error", err)
		return
	}
	cfg.logger.DebugContext(ctx, "trial fit",
		"trial", i,
		"shift", shift,
		"amplitude", g.Amplitude,
		"center", g.Center,
		"width", g.Width,
		"offset", g.Offset,
	)
}
