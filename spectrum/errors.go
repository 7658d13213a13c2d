package spectrum

import (
	"errors"
	"fmt"
)

// Errors returned by the band processor.
var (
	ErrEmptyRange              = errors.New("spectrum: no samples in range")
	ErrDegenerateNormalization = errors.New("spectrum: degenerate normalization")
	ErrLengthMismatch          = errors.New("spectrum: slice length mismatch")
	ErrNotIncreasing           = errors.New("spectrum: wavelength not strictly increasing")
	ErrNegativeUncertainty     = errors.New("spectrum: negative uncertainty")
	ErrInvalidRange            = errors.New("spectrum: invalid range")
)

// EmptyRangeError reports a band selection that matched no samples.
type EmptyRangeError struct {
	Object   string
	Band     string
	Range    Range
	Coverage Range
}

func (e *EmptyRangeError) Error() string {
	return fmt.Sprintf("spectrum: object %q band %q: no samples in %v (spectrum covers %v)",
		e.Object, e.Band, e.Range, e.Coverage)
}

// Is matches ErrEmptyRange.
func (e *EmptyRangeError) Is(target error) bool { return target == ErrEmptyRange }

// DegenerateNormalizationError reports a normalization window whose mean flux
// cannot be used as a divisor.
type DegenerateNormalizationError struct {
	Object string
	Band   string
	Range  Range
	Finite int     // finite flux samples found in the window
	Mean   float64 // NaN when Finite is zero
}

func (e *DegenerateNormalizationError) Error() string {
	if e.Finite == 0 {
		return fmt.Sprintf("spectrum: object %q band %q: no finite flux in normalization window %v",
			e.Object, e.Band, e.Range)
	}
	return fmt.Sprintf("spectrum: object %q band %q: normalization mean %g over %v (%d samples)",
		e.Object, e.Band, e.Mean, e.Range, e.Finite)
}

// Is matches ErrDegenerateNormalization.
func (e *DegenerateNormalizationError) Is(target error) bool {
	return target == ErrDegenerateNormalization
}
