// Package classify parses spectral classifications and decides which objects
// of a spectral type contribute to a template.
//
// A classification key pairs a [SpectralType] (M7..M9, L0..L9, T0..T8) with a
// [Gravity] class. Gravity is read from the Greek suffix of the type text
// (γ for very low gravity, β for intermediate gravity) and from the catalog's
// young flag.
//
//	typ, grav, err := classify.ParseSpectralType("L3.5γ")
//	// typ == classify.L3, grav == classify.Gamma
//
// [Select] reproduces the member policy used for template construction:
//
//	decisions := classify.Select(classify.Field, candidates)
//	for _, d := range decisions {
//		if d.InTemplate { ... }
//	}
package classify
