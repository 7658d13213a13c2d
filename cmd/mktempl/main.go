// Command mktempl builds spectral templates from the catalog.
//
// For every configured spectral type, gravity class and band it selects the
// member objects, band-processes their NIR spectra, aggregates them and
// writes <type><band>_<gravity>.txt into the template directory.
//
// Usage:
//
//	mktempl [flags]
//
// Examples:
//
//	mktempl -config nirspec.yaml
//	mktempl -types L3,L4 -gravities f,g -bands J
//	mktempl -plot
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

	"github.com/cwbudde/algo-nirspec/catalog"
	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/config"
	"github.com/cwbudde/algo-nirspec/internal/logging"
	"github.com/cwbudde/algo-nirspec/internal/metrics"
	"github.com/cwbudde/algo-nirspec/render"
	"github.com/cwbudde/algo-nirspec/template"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "mktempl:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("mktempl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML configuration file")
	types := fs.String("types", "", "comma-separated spectral types, e.g. L0,L1 (default from config)")
	gravities := fs.String("gravities", "", "comma-separated gravity codes f,b,g,y or unspecified (default from config)")
	bands := fs.String("bands", "", "comma-separated bands J,H,K (default from config)")
	plotFigures := fs.Bool("plot", false, "render one comparison figure per spectral type into paths.figure_dir")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: mktempl [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Builds spectral templates from the catalog.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *types != "" {
		cfg.Template.Types = splitList(*types)
	}
	if *gravities != "" {
		cfg.Template.Gravities = splitList(*gravities)
	}
	if *bands != "" {
		cfg.Template.Bands = splitList(*bands)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *plotFigures && cfg.Paths.FigureDir == "" {
		return errors.New("-plot needs paths.figure_dir")
	}

	log, err := logging.NewWriter(stderr, cfg.Logging)
	if err != nil {
		return err
	}
	ctx, _ = logging.WithRunID(ctx)
	log.InfoContext(ctx, "mktempl starting", "catalog", cfg.Paths.Catalog, "templates", cfg.Paths.TemplateDir)

	keys, err := cfg.Template.Keys()
	if err != nil {
		return err
	}
	bandList, err := cfg.Template.BandList()
	if err != nil {
		return err
	}

	store, err := catalog.Open(ctx, cfg.Paths.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	rec := metrics.New("mktempl")
	b := &builder{
		store:              store,
		log:                log,
		rec:                rec,
		dir:                template.Dir(cfg.Paths.TemplateDir),
		requireUncertainty: cfg.Template.RequireUncertainty,
	}

	built := 0
	for _, group := range byType(keys) {
		var panels []render.Panel
		for _, band := range bandList {
			panel := render.Panel{Band: band.Name, Title: fmt.Sprintf("%s %s", group[0].Type, band.Name)}

			for _, key := range group {
				t, err := b.build(ctx, key, band)
				if err != nil {
					return err
				}
				if t.Empty() {
					continue
				}

				path, err := b.dir.Save(t)
				if err != nil {
					return err
				}
				built++
				fmt.Fprintf(stdout, "%s\t%s\t%d members\t%s\n", key, band.Name, t.Used, path)

				panel.Entries = append(panel.Entries, render.Entry{Label: key.String(), Template: &t})
			}

			if len(panel.Entries) > 0 {
				panels = append(panels, panel)
			}
		}

		if *plotFigures && len(panels) > 0 {
			path := filepath.Join(cfg.Paths.FigureDir, group[0].Type.String()+"_templates.png")
			if err := os.MkdirAll(cfg.Paths.FigureDir, 0o755); err != nil {
				return err
			}
			if err := render.Templates(path, panels); err != nil {
				return err
			}
			log.InfoContext(ctx, "figure written", "path", path)
		}
	}

	log.InfoContext(ctx, "mktempl done", "templates", built)

	if cfg.Paths.MetricsFile != "" {
		if err := rec.WriteFile(cfg.Paths.MetricsFile); err != nil {
			return err
		}
	}

	return nil
}

// byType groups keys by spectral type, keeping their order.
func byType(keys []classify.Key) [][]classify.Key {
	var groups [][]classify.Key
	for _, k := range keys {
		if n := len(groups); n > 0 && groups[n-1][0].Type == k.Type {
			groups[n-1] = append(groups[n-1], k)
			continue
		}
		groups = append(groups, []classify.Key{k})
	}
	return groups
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
