package rv

import (
	"math"

	"github.com/cwbudde/algo-nirspec/dsp/interp"
	"github.com/cwbudde/algo-nirspec/spectrum"
)

// SpeedOfLight in km/s.
const SpeedOfLight = 299792.458

// prepared holds the oversampled series shared read-only by all trials.
type prepared struct {
	wavelength  []float64 // oversampled log grid
	target      []float64
	targetSig   []float64
	standard    []float64
	standardSig []float64

	gridMin, gridMax float64
}

// restrictOverlap returns copies of the fluxes of t and s with every sample
// outside the common wavelength range set to 1. Non-finite fluxes become 1
// and non-finite uncertainties 0.
func restrictOverlap(t, s spectrum.Spectrum) (tf, tu, sf, su []float64, err error) {
	tc, sc := t.Coverage(), s.Coverage()
	lo := math.Max(tc.Low, sc.Low)
	hi := math.Min(tc.High, sc.High)
	if lo >= hi {
		return nil, nil, nil, nil, &NoOverlapError{Target: tc, Standard: sc}
	}

	common := spectrum.Range{Low: lo, High: hi}
	tf, tu = maskOutside(t, common)
	sf, su = maskOutside(s, common)

	return tf, tu, sf, su, nil
}

func maskOutside(s spectrum.Spectrum, r spectrum.Range) (flux, unc []float64) {
	flux = make([]float64, s.Len())
	unc = make([]float64, s.Len())

	for i, wl := range s.Wavelength {
		f, u := s.Flux[i], s.Uncertainty[i]
		if !r.Contains(wl) || !finite(f) {
			f = 1
		}
		if !finite(u) {
			u = 0
		}
		flux[i], unc[i] = f, u
	}

	return flux, unc
}

// logGrid returns n wavelengths spaced evenly in ln(wavelength) from lo to hi.
func logGrid(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	lnLo := math.Log(lo)
	step := (math.Log(hi) - lnLo) / float64(n-1)
	for i := range out {
		out[i] = math.Exp(lnLo + step*float64(i))
	}
	out[0], out[n-1] = lo, hi
	return out
}

// prepare runs the overlap, log-grid and oversampling stages.
func prepare(in Input, oversample int) (*prepared, error) {
	n := in.Standard.Len()

	tf, tu, sf, su, err := restrictOverlap(in.Target, in.Standard)
	if err != nil {
		return nil, err
	}
	for _, c := range []struct {
		stage string
		got   int
		want  int
	}{
		{"target overlap flux", len(tf), in.Target.Len()},
		{"target overlap uncertainty", len(tu), in.Target.Len()},
		{"standard overlap flux", len(sf), n},
		{"standard overlap uncertainty", len(su), n},
	} {
		if err := expectLen(c.stage, c.got, c.want); err != nil {
			return nil, err
		}
	}

	cov := in.Standard.Coverage()
	grid := logGrid(cov.Low, cov.High, n)

	onGrid := make([][]float64, 4)
	sources := []struct {
		wl, y []float64
	}{
		{in.Target.Wavelength, tf},
		{in.Target.Wavelength, tu},
		{in.Standard.Wavelength, sf},
		{in.Standard.Wavelength, su},
	}
	for i, src := range sources {
		if onGrid[i], err = interp.Linear(grid, src.wl, src.y); err != nil {
			return nil, err
		}
		if err := expectLen("log grid", len(onGrid[i]), n); err != nil {
			return nil, err
		}
	}

	zoomed := make([][]float64, 5)
	for i, y := range append([][]float64{grid}, onGrid...) {
		if zoomed[i], err = interp.Zoom(y, oversample); err != nil {
			return nil, err
		}
		if err := expectLen("oversampled series", len(zoomed[i]), interp.ZoomLen(n, oversample)); err != nil {
			return nil, err
		}
	}

	return &prepared{
		wavelength:  zoomed[0],
		target:      zoomed[1],
		targetSig:   zoomed[2],
		standard:    zoomed[3],
		standardSig: zoomed[4],
		gridMin:     cov.Low,
		gridMax:     cov.High,
	}, nil
}

// velocityPerPixel is the velocity step of one oversampled pixel of the
// logarithmic grid.
func (p *prepared) velocityPerPixel() float64 {
	return SpeedOfLight * math.Log(p.gridMax/p.gridMin) / float64(len(p.wavelength)-1)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
