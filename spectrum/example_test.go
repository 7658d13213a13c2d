package spectrum_test

import (
	"fmt"

	"github.com/cwbudde/algo-nirspec/spectrum"
)

func ExampleBand_Process() {
	raw, _ := spectrum.New("U20268",
		[]float64{0.85, 0.9, 1.0, 1.1, 1.2, 1.5},
		[]float64{2, 4, 4, 4, 4, 9},
		[]float64{0.2, 0.4, 0.4, 0.4, 0.4, 0.9})

	j, err := spectrum.J.Process(raw)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(j.Wavelength)
	fmt.Println(j.Flux)

	// Output:
	// [0.85 0.9 1 1.1 1.2]
	// [0.5 1 1 1 1]
}

func ExampleSelectBand() {
	raw, _ := spectrum.New("U20268", []float64{1.0, 1.5, 2.0}, []float64{1, 2, 3}, nil)

	_, err := spectrum.SelectBand(raw, spectrum.Range{Low: 2.1, High: 2.4})
	fmt.Println(err)

	// Output:
	// spectrum: object "U20268" band "": no samples in [2.1, 2.4] (spectrum covers [1, 2])
}
