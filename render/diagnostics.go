package render

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-nirspec/rv"
)

// ErrNoTrials is returned for a result without successful trials.
var ErrNoTrials = errors.New("render: result has no trial shifts")

// RVDiagnostics draws the histogram of per-trial velocities of res with the
// fitted normal density on top.
func RVDiagnostics(path string, res rv.Result, opts ...Option) error {
	vs := res.Velocities()
	if len(vs) == 0 {
		return ErrNoTrials
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("RV %.2f ± %.2f km/s (%d/%d trials)",
		res.Velocity, res.Uncertainty, len(res.Shifts), res.Trials)
	p.X.Label.Text = "Velocity (km/s)"
	p.Y.Label.Text = "Density"

	hist, err := plotter.NewHist(plotter.Values(vs), cfg.bins)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	hist.Normalize(1)
	p.Add(hist)

	if sigma := res.ShiftStdDev * res.VelocityPerPixel; sigma > 0 {
		normal := distuv.Normal{Mu: res.Velocity, Sigma: sigma}
		density := plotter.NewFunction(normal.Prob)
		density.Width = vg.Points(1.5)
		density.Color = spectrumColor
		p.Add(density)
	}

	return saveRow(path, []*plot.Plot{p}, 5*vg.Inch, 4*vg.Inch)
}
