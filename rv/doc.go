// Package rv estimates the radial velocity of a target spectrum relative to a
// standard of known velocity by Monte-Carlo cross-correlation.
//
// # Algorithm
//
//  1. Both spectra are restricted to their common wavelength range; flux
//     outside it is set to the continuum level 1.
//  2. Flux and uncertainty of both are interpolated onto a logarithmic
//     wavelength grid with as many points as the standard, so a Doppler
//     shift becomes a constant pixel offset.
//  3. The series are oversampled by an integer factor with cubic
//     interpolation.
//  4. Each trial perturbs both fluxes with Gaussian noise scaled by their
//     uncertainties, standardizes them, cross-correlates them and fits a
//     Gaussian plus offset to a window around zero lag. The trial's pixel
//     shift is the distance from zero lag to the fitted center.
//  5. A normal distribution fitted to the shifts gives the mean shift and its
//     spread, converted to km/s with the velocity per oversampled pixel.
//
// Trials run concurrently on a bounded worker pool. Each trial draws its
// noise from its own PCG stream seeded by (seed, trial index), so results do
// not depend on scheduling or on the number of workers.
//
// # Usage
//
//	res, err := rv.Estimate(ctx, rv.Input{
//		Target:        target,
//		Standard:      standard,
//		StandardRV:    12.3,
//		StandardRVErr: 0.4,
//	}, rv.WithTrials(500), rv.WithSeed(42))
//	if err != nil {
//		return err
//	}
//	fmt.Printf("%.2f ± %.2f km/s\n", res.Velocity, res.Uncertainty)
package rv
