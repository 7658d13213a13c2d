package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/dsp/interp"
	"github.com/cwbudde/algo-nirspec/internal/metrics"
	"github.com/cwbudde/algo-nirspec/render"
	"github.com/cwbudde/algo-nirspec/spectrum"
	"github.com/cwbudde/algo-nirspec/stats/sample"
	"github.com/cwbudde/algo-nirspec/template"
)

var (
	errNoTemplates = errors.New("no young templates found")
	errNoOverlap   = errors.New("subject does not cover the template")
)

type comparer struct {
	log *slog.Logger
	rec *metrics.Recorder
	dir template.Dir
}

// subject is the spectrum compared with the field templates of one band.
type subject struct {
	label    string
	spectrum spectrum.Spectrum
}

type row struct {
	key classify.Key
	rms float64
}

// compositeSubject loads the young templates of typ for the given gravities
// and averages them into one template. A single template is used as is.
func (c *comparer) compositeSubject(ctx context.Context, typ classify.SpectralType, gravities []classify.Gravity, band spectrum.Band) (subject, error) {
	var loaded []template.Template
	for _, g := range gravities {
		key := classify.Key{Type: typ, Gravity: g}
		t, err := c.dir.Load(key, band.Name)
		if errors.Is(err, os.ErrNotExist) {
			c.log.WarnContext(ctx, "no young template", "key", key.String(), "band", band.Name)
			continue
		}
		if err != nil {
			return subject{}, err
		}
		loaded = append(loaded, t)
	}

	switch len(loaded) {
	case 0:
		return subject{}, fmt.Errorf("%w: %s %s", errNoTemplates, typ, band.Name)
	case 1:
		return subject{label: loaded[0].Key.String(), spectrum: loaded[0].Spectrum()}, nil
	}

	members := make([]template.Member, len(loaded))
	for i, t := range loaded {
		members[i] = t.Member(t.Key.String())
	}

	key := classify.Key{Type: typ, Gravity: classify.Young}
	composite, err := template.Build(members,
		template.WithKey(key),
		template.WithBand(band.Name),
	)
	if err != nil {
		return subject{}, fmt.Errorf("composite %s %s: %w", key, band.Name, err)
	}
	c.rec.Template(composite)
	c.log.InfoContext(ctx, "composite built", "band", band.Name, "templates", composite.Used)

	return subject{label: key.String(), spectrum: composite.Spectrum()}, nil
}

// objectSubject band-processes an object spectrum.
func (c *comparer) objectSubject(s spectrum.Spectrum, band spectrum.Band) (subject, error) {
	bs, err := band.Process(s)
	if err != nil {
		return subject{}, err
	}
	return subject{label: s.Object, spectrum: bs}, nil
}

// compare measures the subject against the field template of every key and
// lays out the figure panel: each template followed by the subject drawn
// over it. Missing templates are logged and left out.
func (c *comparer) compare(ctx context.Context, sub subject, keys []classify.Key, band spectrum.Band) ([]row, render.Panel) {
	panel := render.Panel{Band: band.Name, Title: fmt.Sprintf("%s vs field, %s", sub.label, band.Name)}

	var rows []row
	for _, key := range keys {
		field, err := c.dir.Load(key, band.Name)
		if err != nil {
			c.log.WarnContext(ctx, "no field template", "key", key.String(), "band", band.Name, "err", err)
			continue
		}

		rms, err := residual(sub.spectrum, field)
		if err != nil {
			c.log.WarnContext(ctx, "not compared", "key", key.String(), "band", band.Name, "err", err)
			continue
		}
		rows = append(rows, row{key: key, rms: rms})

		subj := sub.spectrum
		panel.Entries = append(panel.Entries,
			render.Entry{Label: key.Type.String(), Template: &field},
			render.Entry{Spectrum: &subj, Overlay: true},
		)
	}

	return rows, panel
}

// residual returns the RMS difference between s, resampled onto the
// template grid, and the template mean over the bins s covers.
func residual(s spectrum.Spectrum, t template.Template) (float64, error) {
	flux, err := interp.Linear(t.Wavelength, s.Wavelength, s.Flux)
	if err != nil {
		return math.NaN(), err
	}

	cov := s.Coverage()
	var sq []float64
	for i, wl := range t.Wavelength {
		if !cov.Contains(wl) {
			continue
		}
		d := flux[i] - t.Mean[i]
		sq = append(sq, d*d)
	}

	st := sample.Calculate(sq)
	if st.Count == 0 {
		return math.NaN(), errNoOverlap
	}

	return math.Sqrt(st.Mean), nil
}

// closest returns the row with the smallest residual; ties keep the first.
func closest(rows []row) (row, bool) {
	if len(rows) == 0 {
		return row{}, false
	}
	best := rows[0]
	for _, r := range rows[1:] {
		if r.rms < best.rms {
			best = r
		}
	}
	return best, true
}
