package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-nirspec/internal/testutil"
)

func sampleGaussian(g Gaussian, x []float64) []float64 {
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = g.Eval(xi)
	}
	return y
}

func TestFitGaussianRecoversParameters(t *testing.T) {
	x := testutil.LinearGrid(0, 999, 1000)

	tests := []struct {
		name string
		want Gaussian
	}{
		{name: "centered", want: Gaussian{Amplitude: 800, Center: 500, Width: 40, Offset: 20}},
		{name: "off center", want: Gaussian{Amplitude: 1, Center: 430.25, Width: 25, Offset: -0.1}},
		{name: "narrow", want: Gaussian{Amplitude: 5, Center: 612.5, Width: 8, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := sampleGaussian(tt.want, x)

			got, err := FitGaussian(x, y, GuessGaussian(x, y))
			if err != nil {
				t.Fatalf("FitGaussian: %v", err)
			}

			if math.Abs(got.Center-tt.want.Center) > 1e-3 {
				t.Errorf("Center = %v, want %v", got.Center, tt.want.Center)
			}
			if math.Abs(got.Width-tt.want.Width) > 1e-3*tt.want.Width {
				t.Errorf("Width = %v, want %v", got.Width, tt.want.Width)
			}
			if math.Abs(got.Amplitude-tt.want.Amplitude) > 1e-3*tt.want.Amplitude {
				t.Errorf("Amplitude = %v, want %v", got.Amplitude, tt.want.Amplitude)
			}
		})
	}
}

func TestFitGaussianNoisy(t *testing.T) {
	x := testutil.LinearGrid(0, 499, 500)
	want := Gaussian{Amplitude: 10, Center: 260.4, Width: 30, Offset: 1}

	y := sampleGaussian(want, x)
	noise := testutil.DeterministicNoise(42, 0.2, len(y))
	for i := range y {
		y[i] += noise[i]
	}

	got, err := FitGaussian(x, y, GuessGaussian(x, y))
	if err != nil {
		t.Fatalf("FitGaussian: %v", err)
	}
	if math.Abs(got.Center-want.Center) > 0.5 {
		t.Errorf("Center = %v, want %v", got.Center, want.Center)
	}
}

func TestFitGaussianErrors(t *testing.T) {
	if _, err := FitGaussian([]float64{1, 2}, []float64{1}, Gaussian{Width: 1}); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
	if _, err := FitGaussian([]float64{1, 2, 3}, []float64{1, 2, 3}, Gaussian{Width: 1}); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestGuessGaussian(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	y := []float64{1, 1, 1, 2, 4, 9, 4, 2, 1, 1, 1}

	g := GuessGaussian(x, y)
	if g.Center != 5 || g.Amplitude != 8 || g.Offset != 1 || g.Width != 1 {
		t.Fatalf("GuessGaussian = %+v", g)
	}
}

func TestGaussianFinite(t *testing.T) {
	if (Gaussian{Width: 0}).Finite() {
		t.Error("zero width reported finite")
	}
	if (Gaussian{Center: math.NaN(), Width: 1}).Finite() {
		t.Error("NaN center reported finite")
	}
	if !(Gaussian{Amplitude: 1, Width: 2}).Finite() {
		t.Error("valid profile reported non-finite")
	}
}
