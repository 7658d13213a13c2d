package conv_test

import (
	"fmt"

	"github.com/cwbudde/algo-nirspec/dsp/conv"
)

func ExampleDirect() {
	// Simple moving average filter
	signal := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	kernel := []float64{0.25, 0.5, 0.25}

	result, _ := conv.Direct(signal, kernel)

	fmt.Printf("Input length: %d\n", len(signal))
	fmt.Printf("Kernel length: %d\n", len(kernel))
	fmt.Printf("Output length: %d\n", len(result))
	fmt.Printf("First few values: %.2f, %.2f, %.2f\n", result[0], result[1], result[2])

	// Output:
	// Input length: 9
	// Kernel length: 3
	// Output length: 11
	// First few values: 0.25, 1.00, 2.00
}

func ExampleCorrelate() {
	// Find where a pattern occurs in a signal.
	pattern := []float64{1, 2, 1}
	signal := []float64{0, 0, 0, 0, 1, 2, 1, 0, 0}

	corr, _ := conv.Correlate(signal, pattern)
	peakIdx, peakVal := conv.FindPeak(corr)

	fmt.Printf("Peak value: %.0f\n", peakVal)
	fmt.Printf("Pattern starts at lag: %d\n", conv.LagFromIndex(peakIdx, len(pattern)))

	// Output:
	// Peak value: 6
	// Pattern starts at lag: 4
}

func ExampleCorrelator() {
	c, _ := conv.NewCorrelator(4, 4)
	out := make([]float64, c.Len())

	_ = c.CorrelateTo(out, []float64{0, 1, 0, 0}, []float64{1, 0, 0, 0})

	idx, _ := conv.FindPeak(out)
	fmt.Printf("lag %d\n", conv.LagFromIndex(idx, 4))

	// Output:
	// lag 1
}
