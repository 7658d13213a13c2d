package spectrum

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Range is an inclusive wavelength window [Low, High] in microns.
type Range struct {
	Low  float64
	High float64
}

// Contains reports whether wl lies inside r, bounds included.
func (r Range) Contains(wl float64) bool {
	return wl >= r.Low && wl <= r.High
}

// Valid reports whether r is a non-empty, ordered window.
func (r Range) Valid() bool {
	return isFinite(r.Low) && isFinite(r.High) && r.Low <= r.High
}

func (r Range) String() string {
	return fmt.Sprintf("[%g, %g]", r.Low, r.High)
}

// Band is a named wavelength window with a normalization sub-window.
type Band struct {
	Name string
	Sel  Range // selection window
	Norm Range // normalization window, inside Sel
}

// Predefined bands. Limits follow the SpeX prism L-dwarf reductions.
var (
	OPT = Band{Name: "OPT", Sel: Range{0.65, 0.90}, Norm: Range{0.66, 0.89}}
	J   = Band{Name: "J", Sel: Range{0.8, 1.4}, Norm: Range{0.87, 1.39}}
	H   = Band{Name: "H", Sel: Range{1.4, 1.9}, Norm: Range{1.41, 1.89}}
	K   = Band{Name: "K", Sel: Range{1.9, 2.4}, Norm: Range{1.91, 2.39}}
)

// NIRBands returns the near-infrared bands in wavelength order.
func NIRBands() []Band {
	return []Band{J, H, K}
}

// BandByName looks up a predefined band, case-insensitively.
func BandByName(name string) (Band, bool) {
	for _, b := range []Band{OPT, J, H, K} {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Band{}, false
}

// Validate checks that both windows are ordered and that Norm lies inside Sel.
func (b Band) Validate() error {
	if !b.Sel.Valid() || !b.Norm.Valid() {
		return fmt.Errorf("%w: band %q sel %v norm %v", ErrInvalidRange, b.Name, b.Sel, b.Norm)
	}
	if b.Norm.Low < b.Sel.Low || b.Norm.High > b.Sel.High {
		return fmt.Errorf("%w: band %q norm %v outside %v", ErrInvalidRange, b.Name, b.Norm, b.Sel)
	}
	return nil
}

// Process selects the band from s and normalizes it by the band's
// normalization window.
func (b Band) Process(s Spectrum) (Spectrum, error) {
	sel, err := selectBand(s, b.Name, b.Sel)
	if err != nil {
		return Spectrum{}, err
	}

	return normalize(sel, b.Name, b.Norm)
}

// SelectBand returns the samples of s whose wavelength lies in r (inclusive).
// It fails with *EmptyRangeError when no sample qualifies.
func SelectBand(s Spectrum, r Range) (Spectrum, error) {
	return selectBand(s, "", r)
}

// Normalize divides flux and uncertainty by the mean of the finite flux
// values whose wavelength lies in r. It fails with
// *DegenerateNormalizationError when the window holds no finite flux or the
// mean is zero or not finite.
func Normalize(s Spectrum, r Range) (Spectrum, error) {
	return normalize(s, "", r)
}

func selectBand(s Spectrum, band string, r Range) (Spectrum, error) {
	if len(s.Flux) != len(s.Wavelength) || len(s.Uncertainty) != len(s.Wavelength) {
		return Spectrum{}, fmt.Errorf("%w: object %q", ErrLengthMismatch, s.Object)
	}

	lo, hi := -1, -1
	for i, wl := range s.Wavelength {
		if !r.Contains(wl) {
			continue
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}

	if lo < 0 {
		return Spectrum{}, &EmptyRangeError{Object: s.Object, Band: band, Range: r, Coverage: s.Coverage()}
	}

	// Wavelength is increasing, so the matches form one contiguous run.
	return Spectrum{
		Object:      s.Object,
		Wavelength:  append([]float64(nil), s.Wavelength[lo:hi+1]...),
		Flux:        append([]float64(nil), s.Flux[lo:hi+1]...),
		Uncertainty: append([]float64(nil), s.Uncertainty[lo:hi+1]...),
	}, nil
}

func normalize(s Spectrum, band string, r Range) (Spectrum, error) {
	if len(s.Flux) != len(s.Wavelength) || len(s.Uncertainty) != len(s.Wavelength) {
		return Spectrum{}, fmt.Errorf("%w: object %q", ErrLengthMismatch, s.Object)
	}

	var (
		sum    float64
		finite int
	)
	for i, wl := range s.Wavelength {
		if !r.Contains(wl) || !isFinite(s.Flux[i]) {
			continue
		}
		sum += s.Flux[i]
		finite++
	}

	derr := &DegenerateNormalizationError{Object: s.Object, Band: band, Range: r, Finite: finite}
	if finite == 0 {
		derr.Mean = math.NaN()
		return Spectrum{}, derr
	}

	mean := sum / float64(finite)
	if mean == 0 || !isFinite(mean) {
		derr.Mean = mean
		return Spectrum{}, derr
	}

	out := Spectrum{
		Object:      s.Object,
		Wavelength:  append([]float64(nil), s.Wavelength...),
		Flux:        make([]float64, len(s.Flux)),
		Uncertainty: make([]float64, len(s.Uncertainty)),
	}
	floats.ScaleTo(out.Flux, 1/mean, s.Flux)
	// Uncertainties stay non-negative even for a negative reference level.
	floats.ScaleTo(out.Uncertainty, 1/math.Abs(mean), s.Uncertainty)

	return out, nil
}
