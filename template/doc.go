// Package template averages band-processed spectra of one classification
// into a template: per wavelength bin the mean flux, the sample variance and
// the min/max envelope of the member fluxes.
//
// # Usage
//
//	t, err := template.Build(members,
//		template.WithKey(classify.Key{Type: classify.L3, Gravity: classify.Field}),
//		template.WithBand("J"),
//		template.WithRequireUncertainty(true),
//	)
//	if err != nil {
//		return err // grid mismatch
//	}
//	if t.Empty() {
//		// fewer than two eligible members
//	}
//
// Templates compose: [Template.Spectrum] returns the mean flux with the
// standard deviation as uncertainty, which can join a higher-level Build.
//
// # Persistence
//
// [Write] and [Read] use five tab-delimited columns (wavelength, mean,
// variance, min, max), one row per bin, with shortest round-trip number
// formatting. [Dir] stores templates as files named by [FileName].
package template
