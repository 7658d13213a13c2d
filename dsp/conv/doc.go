// Package conv provides convolution and cross-correlation routines.
//
// Two strategies are offered:
//
//   - Direct: O(N*M) time-domain evaluation, best for short inputs
//   - FFT: zero-padded transform, multiplication by the conjugate spectrum
//     and inverse transform, best for long inputs
//
// # Usage
//
// For one-shot correlation, use the simple functions:
//
//	corr, err := conv.Correlate(a, b)        // Auto-selects strategy
//	corr, err := conv.CorrelateDirect(a, b)  // Force direct evaluation
//
// For repeated correlation of inputs with fixed lengths, create a reusable
// [Correlator]. It is safe for concurrent use; FFT plans and scratch buffers
// are pooled per transform size:
//
//	c, err := conv.NewCorrelator(len(a), len(b))
//	corr := make([]float64, c.Len())
//	err = c.CorrelateTo(corr, a, b)
//
// # Lags
//
// Index k of a full correlation corresponds to lag k - (len(b) - 1):
//
//	peakIdx, peakVal := conv.FindPeak(corr)
//	lag := conv.LagFromIndex(peakIdx, len(b))
//
// A positive lag means a is delayed relative to b.
package conv
