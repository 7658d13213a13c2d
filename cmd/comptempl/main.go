// Command comptempl compares low-gravity spectra with the field templates of
// a sequence of spectral types.
//
// The subject is either a composite built from the saved young templates of
// one type (a template of templates) or the NIR spectrum of a catalog
// object. Each band prints the RMS residual against every field template and
// the closest type; with -out the subject is drawn over every field template
// and its spectral strip.
//
// Usage:
//
//	comptempl -type TYPE [flags]
//
// Examples:
//
//	comptempl -type L3 -gravities g,b -out L3_young.png
//	comptempl -type L3 -object 1001 -compare L1,L2,L3,L4,L5
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-nirspec/catalog"
	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/config"
	"github.com/cwbudde/algo-nirspec/internal/logging"
	"github.com/cwbudde/algo-nirspec/internal/metrics"
	"github.com/cwbudde/algo-nirspec/render"
	"github.com/cwbudde/algo-nirspec/spectrum"
	"github.com/cwbudde/algo-nirspec/template"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "comptempl:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	config    string
	typ       string
	gravities string
	compare   string
	bands     string
	object    string
	out       string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("comptempl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "", "YAML configuration file")
	fs.StringVar(&o.typ, "type", "", "spectral type of the young templates, e.g. L3 (required)")
	fs.StringVar(&o.gravities, "gravities", "g", "comma-separated gravity codes whose templates form the composite")
	fs.StringVar(&o.compare, "compare", "", "comma-separated field types to compare with (default: template types from config)")
	fs.StringVar(&o.bands, "bands", "", "comma-separated bands J,H,K (default from config)")
	fs.StringVar(&o.object, "object", "", "catalog ref whose NIR spectrum replaces the composite")
	fs.StringVar(&o.out, "out", "", "figure path (default: <figure_dir>/<type>_vs_field.png when figure_dir is set)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: comptempl -type TYPE [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Compares young templates or an object with the field templates.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.typ == "" {
		fs.Usage()
		return o, errors.New("-type is required")
	}

	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	cfg, err := config.Load(o.config)
	if err != nil {
		return err
	}
	if o.compare != "" {
		cfg.Template.Types = splitList(o.compare)
	}
	if o.bands != "" {
		cfg.Template.Bands = splitList(o.bands)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	typ, err := classify.ParseType(o.typ)
	if err != nil {
		return err
	}
	var gravities []classify.Gravity
	for _, code := range splitList(o.gravities) {
		g, err := classify.ParseGravityCode(code)
		if err != nil {
			return err
		}
		gravities = append(gravities, g)
	}
	if len(gravities) == 0 {
		return errors.New("-gravities is empty")
	}

	// Compare against field templates only.
	cfg.Template.Gravities = []string{classify.Field.Code()}
	fieldKeys, err := cfg.Template.Keys()
	if err != nil {
		return err
	}
	bands, err := cfg.Template.BandList()
	if err != nil {
		return err
	}

	log, err := logging.NewWriter(stderr, cfg.Logging)
	if err != nil {
		return err
	}
	ctx, _ = logging.WithRunID(ctx)

	c := &comparer{
		log: log.With("type", typ.String()),
		rec: metrics.New("comptempl"),
		dir: template.Dir(cfg.Paths.TemplateDir),
	}

	var objectSpectrum spectrum.Spectrum
	if o.object != "" {
		store, err := catalog.Open(ctx, cfg.Paths.Catalog)
		if err != nil {
			return err
		}
		objectSpectrum, err = store.Spectrum(ctx, o.object, catalog.NIR)
		store.Close()
		if err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "band\tfield\trms")

	var (
		panels []render.Panel
		best   []string
	)
	for _, band := range bands {
		var sub subject
		if o.object != "" {
			sub, err = c.objectSubject(objectSpectrum, band)
		} else {
			sub, err = c.compositeSubject(ctx, typ, gravities, band)
		}
		if err != nil {
			return err
		}

		rows, panel := c.compare(ctx, sub, fieldKeys, band)
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%.4f\n", band.Name, r.key.Type, r.rms)
		}
		if b, ok := closest(rows); ok {
			best = append(best, fmt.Sprintf("best\t%s\t%s", band.Name, b.key.Type))
		}
		if len(panel.Entries) > 0 {
			panels = append(panels, panel)
		}
	}
	for _, line := range best {
		fmt.Fprintln(tw, line)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	out := o.out
	if out == "" && cfg.Paths.FigureDir != "" {
		name := typ.String()
		if o.object != "" {
			name = o.object
		}
		out = filepath.Join(cfg.Paths.FigureDir, name+"_vs_field.png")
	}
	if out != "" && len(panels) > 0 {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		if err := render.Templates(out, panels, render.WithOffset(0.6)); err != nil {
			return err
		}
		log.InfoContext(ctx, "figure written", "path", out)
	}

	if cfg.Paths.MetricsFile != "" {
		if err := c.rec.WriteFile(cfg.Paths.MetricsFile); err != nil {
			return err
		}
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
