package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cwbudde/algo-nirspec/spectrum"
	"github.com/cwbudde/algo-nirspec/template"
)

// ErrNoPanels is returned when there is nothing to draw.
var ErrNoPanels = errors.New("render: no panels")

// Entry is one line of a panel: a template with its strip, or a spectrum.
// When Template is set and not empty it takes precedence. An Overlay entry
// is drawn at the offset of the entry before it.
type Entry struct {
	Label    string
	Template *template.Template
	Spectrum *spectrum.Spectrum
	Overlay  bool
}

// Panel is one band of a template figure. Entries are stacked bottom-up.
type Panel struct {
	Band    string
	Title   string
	Entries []Entry
}

var (
	templateColor = color.RGBA{A: 255}
	spectrumColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
)

// stripGray returns the fill of a strip shade level, darker for larger
// variance.
func stripGray(level int) color.Gray {
	return color.Gray{Y: uint8(235 - level*(200/(template.StripLevels-1)))}
}

// Templates draws one panel per band into path.
func Templates(path string, panels []Panel, opts ...Option) error {
	if len(panels) == 0 {
		return ErrNoPanels
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	plots := make([]*plot.Plot, len(panels))
	for i, pn := range panels {
		p, err := panelPlot(pn, &cfg)
		if err != nil {
			return fmt.Errorf("render: band %s: %w", pn.Band, err)
		}
		plots[i] = p
	}

	return saveRow(path, plots, cfg.width, cfg.height)
}

func panelPlot(pn Panel, cfg *config) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = pn.Title
	if p.Title.Text == "" {
		p.Title.Text = pn.Band
	}
	p.X.Label.Text = "Wavelength (µm)"
	p.Y.Label.Text = "Normalized flux + offset"

	offsets := entryOffsets(pn.Entries, cfg.offset)
	for i, e := range pn.Entries {
		off := offsets[i]

		switch {
		case e.Template != nil && !e.Template.Empty():
			t := e.Template
			if cfg.strip {
				for _, poly := range stripPolygons(t, off) {
					p.Add(poly)
				}
			}
			line, err := plotter.NewLine(xys(t.Wavelength, t.Mean, off))
			if err != nil {
				return nil, err
			}
			line.Color = templateColor
			line.Width = vg.Points(1)
			p.Add(line)
			addLabel(p, e.Label, t.Wavelength, t.Mean, off)

		case e.Spectrum != nil && e.Spectrum.Len() > 0:
			s := e.Spectrum
			line, err := plotter.NewLine(xys(s.Wavelength, s.Flux, off))
			if err != nil {
				return nil, err
			}
			line.Color = spectrumColor
			line.Width = vg.Points(0.75)
			p.Add(line)
			addLabel(p, e.Label, s.Wavelength, s.Flux, off)
		}
	}

	return p, nil
}

// entryOffsets returns the vertical offset of every entry: one step per
// entry, overlays sharing the offset of their predecessor.
func entryOffsets(entries []Entry, step float64) []float64 {
	out := make([]float64, len(entries))
	level := 0
	for i, e := range entries {
		if i > 0 && !e.Overlay {
			level++
		}
		out[i] = float64(level) * step
	}
	return out
}

// xys pairs x with y+off, dropping non-finite points.
func xys(x, y []float64, off float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i] + off})
	}
	return pts
}

// stripPolygons returns one filled polygon per run of bins sharing a shade
// level, spanning min to max of the template.
func stripPolygons(t *template.Template, off float64) []*plotter.Polygon {
	var (
		out   []*plotter.Polygon
		upper plotter.XYs
		lower plotter.XYs
		level = -1
	)

	flush := func() {
		if len(upper) >= 2 {
			ring := append(plotter.XYs(nil), upper...)
			for i := len(lower) - 1; i >= 0; i-- {
				ring = append(ring, lower[i])
			}
			if poly, err := plotter.NewPolygon(ring); err == nil {
				poly.Color = stripGray(level)
				poly.LineStyle.Width = 0
				out = append(out, poly)
			}
		}
		upper, lower = nil, nil
	}

	for i, wl := range t.Wavelength {
		lo, hi := t.Min[i], t.Max[i]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			flush()
			level = -1
			continue
		}

		shade := template.StripShade(t.Variance[i])
		if shade != level && len(upper) > 0 {
			// Share the boundary bin so adjacent runs touch.
			last := len(upper) - 1
			bu, bl := upper[last], lower[last]
			flush()
			upper, lower = plotter.XYs{bu}, plotter.XYs{bl}
		}
		level = shade

		upper = append(upper, plotter.XY{X: wl, Y: hi + off})
		lower = append(lower, plotter.XY{X: wl, Y: lo + off})
	}
	flush()

	return out
}

// addLabel writes label next to the last finite point of the entry.
func addLabel(p *plot.Plot, label string, x, y []float64, off float64) {
	if label == "" {
		return
	}

	for i := len(x) - 1; i >= 0; i-- {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			continue
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: x[i], Y: y[i] + off}},
			Labels: []string{label},
		})
		if err == nil {
			p.Add(labels)
		}
		return
	}
}
