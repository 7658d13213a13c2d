// Package interp resamples tabulated spectra.
//
//   - [Hermite4]: 4-point cubic Hermite kernel
//   - [Linear]:   piecewise-linear resampling onto a new abscissa, constant
//     beyond the end points
//   - [Zoom]:     integer-factor cubic upsampling of a uniformly sampled series,
//     end points aligned
package interp
