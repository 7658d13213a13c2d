// Command findrv measures the radial velocity of a catalog object by
// Monte-Carlo cross-correlation against a standard of known velocity.
//
// Usage:
//
//	findrv -target REF [flags]
//
// Without -standard the NIR standard of the target's spectral type is used.
//
// Examples:
//
//	findrv -target 1001
//	findrv -target 1001 -standard 2001 -band H -trials 1000
//	findrv -target 1001 -plot rv_1001.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-nirspec/catalog"
	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/config"
	"github.com/cwbudde/algo-nirspec/internal/logging"
	"github.com/cwbudde/algo-nirspec/internal/metrics"
	"github.com/cwbudde/algo-nirspec/render"
	"github.com/cwbudde/algo-nirspec/rv"
	"github.com/cwbudde/algo-nirspec/spectrum"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "findrv:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	config   string
	target   string
	standard string
	band     string
	trials   int
	seed     uint64
	rv       float64
	rvErr    float64
	plot     string
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options

	fs := flag.NewFlagSet("findrv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "", "YAML configuration file")
	fs.StringVar(&o.target, "target", "", "catalog ref of the target (required)")
	fs.StringVar(&o.standard, "standard", "", "catalog ref of the standard (default: standard of the target's type)")
	fs.StringVar(&o.band, "band", "", "band to correlate, J, H or K (default from config)")
	fs.IntVar(&o.trials, "trials", 0, "Monte-Carlo trials (default from config)")
	fs.Uint64Var(&o.seed, "seed", 0, "noise seed (default from config)")
	fs.Float64Var(&o.rv, "rv", math.NaN(), "velocity of the standard in km/s (default from catalog)")
	fs.Float64Var(&o.rvErr, "rverr", math.NaN(), "velocity error of the standard in km/s (default from catalog)")
	fs.StringVar(&o.plot, "plot", "", "write a diagnostics figure to this file (.png, .svg, .pdf)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: findrv -target REF [flags]\n\n")
		fmt.Fprintf(fs.Output(), "Measures a radial velocity by cross-correlation with a standard.\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.target == "" {
		fs.Usage()
		return o, errors.New("-target is required")
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
	if o.band != "" {
		cfg.RV.Band = o.band
	}
	if o.trials > 0 {
		cfg.RV.Trials = o.trials
	}
	if o.seed > 0 {
		cfg.RV.Seed = o.seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	band, _ := spectrum.BandByName(cfg.RV.Band)

	log, err := logging.NewWriter(stderr, cfg.Logging)
	if err != nil {
		return err
	}
	ctx, _ = logging.WithRunID(ctx)

	store, err := catalog.Open(ctx, cfg.Paths.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	std, err := resolveStandard(ctx, store, o)
	if err != nil {
		return err
	}
	log = log.With("target", o.target, "standard", std.Ref, "band", band.Name)

	target, err := bandSpectrum(ctx, store, o.target, band)
	if err != nil {
		return err
	}
	standard, err := bandSpectrum(ctx, store, std.Ref, band)
	if err != nil {
		return err
	}

	in := rv.Input{
		Target:        target,
		Standard:      standard,
		StandardRV:    std.RV,
		StandardRVErr: std.RVErr,
	}

	rec := metrics.New("findrv")
	opts := append(cfg.RV.Options(), rv.WithLogger(log))

	log.InfoContext(ctx, "estimating", "trials", cfg.RV.Trials, "seed", cfg.RV.Seed)
	start := time.Now()
	res, err := rv.Estimate(ctx, in, opts...)
	rec.Estimate(res, time.Since(start), err)

	if cfg.Paths.MetricsFile != "" {
		if werr := rec.WriteFile(cfg.Paths.MetricsFile); werr != nil {
			log.WarnContext(ctx, "metrics not written", "err", werr)
		}
	}
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "estimate done", "velocity", res.Velocity, "uncertainty", res.Uncertainty,
		"failed", res.Failed, "elapsed", time.Since(start))

	printResult(stdout, o.target, std, band, res)

	if o.plot != "" {
		if err := render.RVDiagnostics(o.plot, res); err != nil {
			return err
		}
		log.InfoContext(ctx, "figure written", "path", o.plot)
	}

	return nil
}

// resolveStandard returns the standard named by -standard or, without it,
// the standard of the target's spectral type. -rv and -rverr override the
// catalog velocity.
func resolveStandard(ctx context.Context, store *catalog.Store, o options) (catalog.Standard, error) {
	var (
		std catalog.Standard
		err error
	)

	if o.standard != "" {
		std, err = store.StandardByRef(ctx, o.standard)
		if errors.Is(err, catalog.ErrNotFound) {
			// Any object can serve when its velocity is given on the command line.
			std, err = catalog.Standard{Ref: o.standard, RV: math.NaN(), RVErr: math.NaN()}, nil
		}
	} else {
		var obj catalog.Object
		obj, err = store.Object(ctx, o.target)
		if err != nil {
			return catalog.Standard{}, err
		}
		var typ classify.SpectralType
		typ, _, err = classify.ParseSpectralType(obj.SpectralType)
		if err != nil {
			return catalog.Standard{}, fmt.Errorf("target %s: %w", o.target, err)
		}
		std, err = store.Standard(ctx, typ)
	}
	if err != nil {
		return catalog.Standard{}, err
	}

	if !math.IsNaN(o.rv) {
		std.RV = o.rv
	}
	if !math.IsNaN(o.rvErr) {
		std.RVErr = o.rvErr
	}
	if math.IsNaN(std.RV) {
		return catalog.Standard{}, fmt.Errorf("standard %s has no velocity; pass -rv", std.Ref)
	}
	if math.IsNaN(std.RVErr) {
		std.RVErr = 0
	}

	return std, nil
}

func bandSpectrum(ctx context.Context, store *catalog.Store, ref string, band spectrum.Band) (spectrum.Spectrum, error) {
	sp, err := store.Spectrum(ctx, ref, catalog.NIR)
	if err != nil {
		return spectrum.Spectrum{}, err
	}
	return band.Process(sp)
}

func printResult(w io.Writer, target string, std catalog.Standard, band spectrum.Band, res rv.Result) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "target\t%s\n", target)
	fmt.Fprintf(tw, "standard\t%s (%.2f ± %.2f km/s)\n", std.Ref, std.RV, std.RVErr)
	fmt.Fprintf(tw, "band\t%s\n", band.Name)
	fmt.Fprintf(tw, "velocity\t%.2f ± %.2f km/s\n", res.Velocity, res.Uncertainty)
	fmt.Fprintf(tw, "shift\t%.3f ± %.3f px\n", res.ShiftMean, res.ShiftStdDev)
	fmt.Fprintf(tw, "trials\t%d (%d failed)\n", res.Trials, res.Failed)
	tw.Flush()
}
