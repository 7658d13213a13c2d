// Package render draws templates, comparison spectra and radial velocity
// diagnostics with gonum/plot. The output format follows the file
// extension: png, svg, pdf, eps, jpg or tif.
package render

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrFormat reports an output path without a supported extension.
var ErrFormat = errors.New("render: unsupported output format")

var formats = map[string]bool{
	"png": true, "svg": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

type config struct {
	width  vg.Length // per panel
	height vg.Length
	offset float64 // vertical step between stacked entries
	bins   int     // histogram bins
	strip  bool
}

func defaultConfig() config {
	return config{
		width:  4 * vg.Inch,
		height: 7 * vg.Inch,
		offset: 1,
		bins:   30,
		strip:  true,
	}
}

// Option configures a figure.
type Option func(*config)

// WithPanelSize sets the size of one panel.
func WithPanelSize(w, h vg.Length) Option {
	return func(c *config) {
		if w > 0 && h > 0 {
			c.width, c.height = w, h
		}
	}
}

// WithOffset sets the vertical offset between stacked entries of a panel.
func WithOffset(step float64) Option {
	return func(c *config) { c.offset = step }
}

// WithBins sets the number of histogram bins of RVDiagnostics.
func WithBins(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.bins = n
		}
	}
}

// WithStrip toggles the shaded min/max strip of templates.
func WithStrip(on bool) Option {
	return func(c *config) { c.strip = on }
}

func format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !formats[ext] {
		return "", fmt.Errorf("%w: %q", ErrFormat, path)
	}
	return ext, nil
}

// saveRow draws plots side by side into one file.
func saveRow(path string, plots []*plot.Plot, w, h vg.Length) error {
	ext, err := format(path)
	if err != nil {
		return err
	}

	c, err := draw.NewFormattedCanvas(w*vg.Length(len(plots)), h, ext)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	tiles := draw.Tiles{Rows: 1, Cols: len(plots), PadX: vg.Millimeter, PadY: vg.Millimeter}
	canvases := plot.Align([][]*plot.Plot{plots}, tiles, draw.New(c))
	for j, p := range plots {
		p.Draw(canvases[0][j])
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	return nil
}
