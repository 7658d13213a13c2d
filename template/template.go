package template

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/spectrum"
	"github.com/cwbudde/algo-nirspec/stats/sample"
)

// Errors returned by Build.
var (
	ErrGridMismatch = errors.New("template: member grids differ")
	ErrBandMismatch = errors.New("template: member bands differ")
)

// MinMembers is the smallest number of eligible members that yields a template.
const MinMembers = 2

// Reasons reported for skipped members.
const (
	ReasonNoUncertainty = "no finite uncertainty"
	ReasonTooFew        = "fewer than 2 eligible members"
)

// Member is one band-processed spectrum offered to Build.
type Member struct {
	ID       string
	Band     string // optional; checked against the template band when set
	Spectrum spectrum.Spectrum
}

// Skipped reports a member that did not contribute.
type Skipped struct {
	ID     string
	Reason string
}

// Template is the per-bin aggregate of its members. All five slices share
// the length of the member grid; bins where no member has finite flux hold
// NaN in Mean, Variance, Min and Max.
type Template struct {
	Key  classify.Key
	Band string

	Wavelength []float64
	Mean       []float64
	Variance   []float64 // sample variance, n-1 denominator
	Min        []float64
	Max        []float64

	Used    int
	Skipped []Skipped
}

// Empty reports whether no template could be produced.
func (t Template) Empty() bool { return len(t.Wavelength) == 0 }

// Len returns the number of wavelength bins.
func (t Template) Len() int { return len(t.Wavelength) }

// Spectrum returns the template as a spectrum: mean flux with the per-bin
// standard deviation as uncertainty. The result can be used as a Member of
// another Build.
func (t Template) Spectrum() spectrum.Spectrum {
	unc := make([]float64, len(t.Variance))
	for i, v := range t.Variance {
		unc[i] = math.Sqrt(v)
	}

	return spectrum.Spectrum{
		Object:      t.Key.String(),
		Wavelength:  append([]float64(nil), t.Wavelength...),
		Flux:        append([]float64(nil), t.Mean...),
		Uncertainty: unc,
	}
}

// Member wraps the template as a Member for a higher-level Build.
func (t Template) Member(id string) Member {
	return Member{ID: id, Band: t.Band, Spectrum: t.Spectrum()}
}

type config struct {
	requireUncertainty bool
	key                classify.Key
	band               string
}

func defaultConfig() config {
	return config{}
}

// Option configures Build.
type Option func(*config)

// WithRequireUncertainty skips members whose uncertainty is NaN everywhere.
func WithRequireUncertainty(require bool) Option {
	return func(c *config) { c.requireUncertainty = require }
}

// WithKey labels the template with its classification.
func WithKey(key classify.Key) Option {
	return func(c *config) { c.key = key }
}

// WithBand labels the template with its band name. Members with a
// different non-empty Band are rejected.
func WithBand(name string) Option {
	return func(c *config) { c.band = name }
}

// Build aggregates members into a template.
//
// Members must share one grid length (ErrGridMismatch otherwise); no
// resampling is attempted and the wavelength axis of the first eligible
// member is used. With fewer than MinMembers eligible members the result is
// Empty and every eligible member is reported as skipped. In all cases
// Used + len(Skipped) == len(members).
func Build(members []Member, opts ...Option) (Template, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := checkMembers(members, &cfg); err != nil {
		return Template{}, err
	}

	t := Template{Key: cfg.key, Band: cfg.band}

	eligible := make([]Member, 0, len(members))
	for _, m := range members {
		if cfg.requireUncertainty && !m.Spectrum.HasFiniteUncertainty() {
			t.Skipped = append(t.Skipped, Skipped{ID: m.ID, Reason: ReasonNoUncertainty})
			continue
		}
		eligible = append(eligible, m)
	}

	if len(eligible) < MinMembers {
		for _, m := range eligible {
			t.Skipped = append(t.Skipped, Skipped{ID: m.ID, Reason: ReasonTooFew})
		}
		return t, nil
	}

	n := eligible[0].Spectrum.Len()
	t.Wavelength = append([]float64(nil), eligible[0].Spectrum.Wavelength...)
	t.Mean = make([]float64, n)
	t.Variance = make([]float64, n)
	t.Min = make([]float64, n)
	t.Max = make([]float64, n)
	t.Used = len(eligible)

	var acc sample.Accumulator
	for i := 0; i < n; i++ {
		acc.Reset()
		for _, m := range eligible {
			acc.Add(m.Spectrum.Flux[i])
		}

		s := acc.Result()
		t.Mean[i] = s.Mean
		t.Variance[i] = s.Variance
		t.Min[i] = s.Min
		t.Max[i] = s.Max
	}

	return t, nil
}

func checkMembers(members []Member, cfg *config) error {
	if len(members) == 0 {
		return nil
	}

	n := members[0].Spectrum.Len()
	for _, m := range members {
		s := m.Spectrum
		if s.Len() != n {
			return fmt.Errorf("%w: member %q has %d bins, member %q has %d",
				ErrGridMismatch, m.ID, s.Len(), members[0].ID, n)
		}
		if len(s.Flux) != n || len(s.Uncertainty) != n {
			return fmt.Errorf("%w: member %q: %w", ErrGridMismatch, m.ID, spectrum.ErrLengthMismatch)
		}

		if m.Band == "" {
			continue
		}
		if cfg.band == "" {
			cfg.band = m.Band
		}
		if m.Band != cfg.band {
			return fmt.Errorf("%w: member %q is %q, template is %q", ErrBandMismatch, m.ID, m.Band, cfg.band)
		}
	}

	return nil
}
