package rv

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-nirspec/spectrum"
)

// Errors returned by Estimate.
var (
	ErrNoOverlap       = errors.New("rv: spectra do not overlap")
	ErrTooManyFailures = errors.New("rv: too many failed trials")
	ErrLengthMismatch  = errors.New("rv: unexpected array length")
	ErrTooShort        = errors.New("rv: spectrum needs at least two samples")
)

// NoOverlapError reports target and standard ranges without common
// wavelengths.
type NoOverlapError struct {
	Target   spectrum.Range
	Standard spectrum.Range
}

func (e *NoOverlapError) Error() string {
	return fmt.Sprintf("rv: target %v and standard %v do not overlap", e.Target, e.Standard)
}

// Is matches ErrNoOverlap.
func (e *NoOverlapError) Is(target error) bool { return target == ErrNoOverlap }

// expectLen asserts an intermediate array length.
func expectLen(stage string, got, want int) error {
	if got != want {
		return fmt.Errorf("%w: %s has %d samples, want %d", ErrLengthMismatch, stage, got, want)
	}
	return nil
}
