package spectrum

import (
	"fmt"
	"math"
)

// Spectrum is an ordered sequence of (wavelength, flux, uncertainty) samples
// stored as parallel slices of equal length.
//
// Wavelength is strictly increasing (microns). Flux may be NaN to mark
// missing samples; Uncertainty is non-negative or NaN.
type Spectrum struct {
	Object      string // object identifier, used in error reports
	Wavelength  []float64
	Flux        []float64
	Uncertainty []float64
}

// New validates the three slices and returns a Spectrum holding copies of
// them. A nil uncertainty slice is replaced by an all-NaN slice.
func New(object string, wavelength, flux, uncertainty []float64) (Spectrum, error) {
	if uncertainty == nil {
		uncertainty = nanSlice(len(wavelength))
	}

	s := Spectrum{
		Object:      object,
		Wavelength:  append([]float64(nil), wavelength...),
		Flux:        append([]float64(nil), flux...),
		Uncertainty: append([]float64(nil), uncertainty...),
	}

	if err := s.Validate(); err != nil {
		return Spectrum{}, err
	}

	return s, nil
}

// Validate checks the structural invariants of s.
func (s Spectrum) Validate() error {
	n := len(s.Wavelength)
	if len(s.Flux) != n || len(s.Uncertainty) != n {
		return fmt.Errorf("%w: wavelength %d, flux %d, uncertainty %d",
			ErrLengthMismatch, n, len(s.Flux), len(s.Uncertainty))
	}

	for i := 1; i < n; i++ {
		if !(s.Wavelength[i] > s.Wavelength[i-1]) {
			return fmt.Errorf("%w: index %d (%g after %g)",
				ErrNotIncreasing, i, s.Wavelength[i], s.Wavelength[i-1])
		}
	}

	for i, u := range s.Uncertainty {
		if u < 0 {
			return fmt.Errorf("%w: index %d (%g)", ErrNegativeUncertainty, i, u)
		}
	}

	return nil
}

// Len returns the number of samples.
func (s Spectrum) Len() int { return len(s.Wavelength) }

// Clone returns a deep copy of s.
func (s Spectrum) Clone() Spectrum {
	return Spectrum{
		Object:      s.Object,
		Wavelength:  append([]float64(nil), s.Wavelength...),
		Flux:        append([]float64(nil), s.Flux...),
		Uncertainty: append([]float64(nil), s.Uncertainty...),
	}
}

// Coverage returns the wavelength range spanned by s.
// The zero Range is returned for an empty spectrum.
func (s Spectrum) Coverage() Range {
	if len(s.Wavelength) == 0 {
		return Range{}
	}

	return Range{Low: s.Wavelength[0], High: s.Wavelength[len(s.Wavelength)-1]}
}

// HasFiniteUncertainty reports whether at least one uncertainty sample is finite.
func (s Spectrum) HasFiniteUncertainty() bool {
	for _, u := range s.Uncertainty {
		if isFinite(u) {
			return true
		}
	}

	return false
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
