// Package spectrum provides the spectrum value type and the band processor:
// wavelength-window selection and flux normalization.
//
// A [Spectrum] holds three parallel slices (wavelength, flux, uncertainty).
// Functions in this package never modify their inputs; they always return a
// new Spectrum.
//
// # Bands
//
// A [Band] names a selection window and a normalization window inside it.
// The near-infrared bands used for L-dwarf templates are predefined:
//
//	s, err := spectrum.J.Process(raw) // select 0.8-1.4 µm, normalize by 0.87-1.39 µm
//
// The two steps are also available on their own:
//
//	sel, err := spectrum.SelectBand(raw, spectrum.Range{Low: 1.4, High: 1.9})
//	norm, err := spectrum.Normalize(sel, spectrum.Range{Low: 1.41, High: 1.89})
//
// Selection fails with an [*EmptyRangeError] when no sample falls in the
// window; normalization fails with a [*DegenerateNormalizationError] when the
// window holds no finite flux or its mean is zero.
package spectrum
