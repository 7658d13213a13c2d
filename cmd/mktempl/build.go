package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/cwbudde/algo-nirspec/catalog"
	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/dsp/interp"
	"github.com/cwbudde/algo-nirspec/internal/metrics"
	"github.com/cwbudde/algo-nirspec/spectrum"
	"github.com/cwbudde/algo-nirspec/template"
)

type builder struct {
	store              *catalog.Store
	log                *slog.Logger
	rec                *metrics.Recorder
	dir                template.Dir
	requireUncertainty bool
}

// build selects the members of key, band-processes their spectra and
// aggregates them. Members without a usable spectrum are logged and left out.
func (b *builder) build(ctx context.Context, key classify.Key, band spectrum.Band) (template.Template, error) {
	log := b.log.With("key", key.String(), "band", band.Name)

	cands, err := b.store.Candidates(ctx, key.Type)
	if err != nil {
		return template.Template{}, err
	}

	var members []template.Member
	for _, d := range classify.Select(key.Gravity, cands) {
		if d.Role == classify.RoleSpecial {
			log.DebugContext(ctx, "kept out of template", "ref", d.Ref, "role", d.Role.String())
		}
		if !d.InTemplate {
			continue
		}

		sp, err := b.store.Spectrum(ctx, d.Ref, catalog.NIR)
		if errors.Is(err, catalog.ErrNotFound) {
			log.WarnContext(ctx, "no NIR spectrum", "ref", d.Ref)
			continue
		}
		if err != nil {
			return template.Template{}, err
		}

		bs, err := band.Process(sp)
		if errors.Is(err, spectrum.ErrEmptyRange) || errors.Is(err, spectrum.ErrDegenerateNormalization) {
			log.WarnContext(ctx, "band processing failed", "ref", d.Ref, "err", err)
			continue
		}
		if err != nil {
			return template.Template{}, err
		}

		members = append(members, template.Member{ID: d.Ref, Band: band.Name, Spectrum: bs})
	}

	members, dropped, err := regrid(members)
	if err != nil {
		return template.Template{}, fmt.Errorf("%s %s: %w", key, band.Name, err)
	}
	for _, s := range dropped {
		log.WarnContext(ctx, "member dropped", "ref", s.ID, "reason", s.Reason)
	}

	t, err := template.Build(members,
		template.WithKey(key),
		template.WithBand(band.Name),
		template.WithRequireUncertainty(b.requireUncertainty),
	)
	if err != nil {
		return template.Template{}, fmt.Errorf("%s %s: %w", key, band.Name, err)
	}
	b.rec.Template(t)

	for _, s := range t.Skipped {
		log.InfoContext(ctx, "member skipped", "ref", s.ID, "reason", s.Reason)
	}
	if t.Empty() {
		log.WarnContext(ctx, "no template", "eligible", len(members))
	}

	return t, nil
}

// reasonTooFewSamples is reported for members whose band holds a single sample.
const reasonTooFewSamples = "fewer than 2 samples in band"

// regrid resamples every member onto the wavelength grid of the first one
// when the grids differ. Members with fewer than two samples cannot be
// resampled and are returned as dropped.
func regrid(members []template.Member) (kept []template.Member, dropped []template.Skipped, err error) {
	for _, m := range members {
		if m.Spectrum.Len() < 2 {
			dropped = append(dropped, template.Skipped{ID: m.ID, Reason: reasonTooFewSamples})
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) < 2 {
		return kept, dropped, nil
	}

	grid := kept[0].Spectrum.Wavelength
	for i := 1; i < len(kept); i++ {
		s := kept[i].Spectrum
		if slices.Equal(s.Wavelength, grid) {
			continue
		}

		flux, err := interp.Linear(grid, s.Wavelength, s.Flux)
		if err != nil {
			return nil, nil, fmt.Errorf("regrid %q: %w", kept[i].ID, err)
		}
		unc, err := interp.Linear(grid, s.Wavelength, s.Uncertainty)
		if err != nil {
			return nil, nil, fmt.Errorf("regrid %q: %w", kept[i].ID, err)
		}

		kept[i].Spectrum = spectrum.Spectrum{
			Object:      s.Object,
			Wavelength:  append([]float64(nil), grid...),
			Flux:        flux,
			Uncertainty: unc,
		}
	}

	return kept, dropped, nil
}
