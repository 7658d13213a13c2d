package rv

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/cwbudde/algo-nirspec/dsp/conv"
	"github.com/cwbudde/algo-nirspec/fit"
	"github.com/cwbudde/algo-nirspec/stats/sample"
)

// errOutsideWindow marks a fitted center that left the correlation window.
var errOutsideWindow = errors.New("rv: fitted center outside window")

// errRejected marks a trial refused by the rejectTrial hook.
var errRejected = errors.New("rv: trial rejected")

// trialRunner evaluates single trials against shared prepared series.
type trialRunner struct {
	cfg  *config
	data *prepared
	corr *conv.Correlator

	zeroLag     int       // correlation index of zero lag
	windowStart int       // first correlation index inside the window
	windowX     []float64 // 0..window-1, the fit abscissa

	scratch sync.Pool
}

// trialScratch is the per-goroutine working memory of a trial.
type trialScratch struct {
	target   []float64
	standard []float64
	noise    []float64
	corr     []float64
}

func newTrialRunner(cfg *config, data *prepared) (*trialRunner, error) {
	n := len(data.standard)

	corr, err := conv.NewCorrelator(n, n)
	if err != nil {
		return nil, err
	}

	window := min(cfg.window, corr.Len())
	zeroLag := conv.IndexFromLag(0, n)
	start := max(0, min(zeroLag-window/2, corr.Len()-window))

	x := make([]float64, window)
	for i := range x {
		x[i] = float64(i)
	}

	r := &trialRunner{
		cfg:         cfg,
		data:        data,
		corr:        corr,
		zeroLag:     zeroLag,
		windowStart: start,
		windowX:     x,
	}
	r.scratch.New = func() any {
		return &trialScratch{
			target:   make([]float64, n),
			standard: make([]float64, n),
			noise:    make([]float64, n),
			corr:     make([]float64, corr.Len()),
		}
	}

	return r, nil
}

// perturb writes flux + sig*N(0, scale) into dst.
func (r *trialRunner) perturb(dst, noise, flux, sig []float64, normal distuv.Normal) {
	for i := range noise {
		noise[i] = normal.Rand()
	}
	vecmath.MulBlock(dst, noise, sig)
	floats.Add(dst, flux)
}

// run evaluates trial i and returns its pixel shift and the peak fit.
func (r *trialRunner) run(i int) (float64, fit.Gaussian, error) {
	if r.cfg.rejectTrial != nil && r.cfg.rejectTrial(i) {
		return 0, fit.Gaussian{}, errRejected
	}

	s, ok := r.scratch.Get().(*trialScratch)
	if !ok {
		panic("rv: scratch pool returned unexpected type")
	}
	defer r.scratch.Put(s)

	normal := distuv.Normal{Mu: 0, Sigma: r.cfg.noiseScale, Src: rand.NewPCG(r.cfg.seed, uint64(i))}

	d := r.data
	if r.cfg.noiseScale == 0 {
		copy(s.target, d.target)
		copy(s.standard, d.standard)
	} else {
		r.perturb(s.target, s.noise, d.target, d.targetSig, normal)
		r.perturb(s.standard, s.noise, d.standard, d.standardSig, normal)
	}

	if _, _, err := sample.Standardize(s.target, s.target); err != nil {
		return 0, fit.Gaussian{}, fmt.Errorf("target: %w", err)
	}
	if _, _, err := sample.Standardize(s.standard, s.standard); err != nil {
		return 0, fit.Gaussian{}, fmt.Errorf("standard: %w", err)
	}

	if err := r.corr.CorrelateTo(s.corr, s.target, s.standard); err != nil {
		return 0, fit.Gaussian{}, err
	}

	y := s.corr[r.windowStart : r.windowStart+len(r.windowX)]

	guess := fit.GuessGaussian(r.windowX, y)
	if r.cfg.initialGuess != nil {
		guess = *r.cfg.initialGuess
	}

	g, err := fit.FitGaussian(r.windowX, y, guess)
	if err != nil {
		return 0, g, err
	}
	if g.Center < 0 || g.Center > float64(len(r.windowX)-1) {
		return 0, g, fmt.Errorf("%w: %g", errOutsideWindow, g.Center)
	}

	shift := float64(r.zeroLag) - (g.Center + float64(r.windowStart))

	return shift, g, nil
}
