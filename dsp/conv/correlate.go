package conv

// Correlate computes the full cross-correlation of a and b.
// The result has length len(a) + len(b) - 1.
// Output index k corresponds to lag k - (len(b) - 1):
//
//	out[k] = sum_i a[i] * b[i-lag]
//
// Short inputs are evaluated directly, longer ones through the FFT.
func Correlate(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	if min(len(a), len(b)) <= directThreshold {
		return CorrelateDirect(a, b)
	}

	return CorrelateFFT(a, b)
}

// CorrelateDirect computes cross-correlation using direct computation.
func CorrelateDirect(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	return Direct(a, reversed(b))
}

// CorrelateFFT computes cross-correlation using the FFT.
func CorrelateFFT(a, b []float64) ([]float64, error) {
	c, err := NewCorrelator(len(a), len(b))
	if err != nil {
		return nil, err
	}

	out := make([]float64, c.Len())
	if err := c.CorrelateTo(out, a, b); err != nil {
		return nil, err
	}

	return out, nil
}

// FindPeak finds the index and value of the maximum in a correlation result.
// The first maximum wins on ties. Returns (-1, 0) for an empty slice.
func FindPeak(corr []float64) (index int, value float64) {
	if len(corr) == 0 {
		return -1, 0
	}

	index = 0
	value = corr[0]

	for i, v := range corr {
		if v > value {
			index = i
			value = v
		}
	}

	return index, value
}

// LagFromIndex converts a correlation result index to a lag value.
// For a correlation of signals with lengths lenA and lenB,
// the lag at index i is i - (lenB - 1).
func LagFromIndex(index, lenB int) int {
	return index - (lenB - 1)
}

// IndexFromLag converts a lag value to a correlation result index.
func IndexFromLag(lag, lenB int) int {
	return lag + (lenB - 1)
}

func reversed(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}
