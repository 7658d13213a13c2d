package testutil

import (
	"math"
	"testing"
)

func TestLogGridEndpointsAndRatio(t *testing.T) {
	g := LogGrid(1.2, 1.3, 64)
	if g[0] != 1.2 || g[63] != 1.3 {
		t.Fatalf("endpoints = %v, %v", g[0], g[63])
	}
	r0 := g[1] / g[0]
	for i := 2; i < len(g); i++ {
		if math.Abs(g[i]/g[i-1]-r0) > 1e-12 {
			t.Fatalf("ratio at %d = %v, want %v", i, g[i]/g[i-1], r0)
		}
	}
}

func TestLinearGridSpacing(t *testing.T) {
	g := LinearGrid(1, 2, 11)
	for i := 1; i < len(g); i++ {
		if math.Abs(g[i]-g[i-1]-0.1) > 1e-12 {
			t.Fatalf("spacing at %d = %v", i, g[i]-g[i-1])
		}
	}
}

func TestAbsorptionFluxShift(t *testing.T) {
	lines := []Line{{Center: 20, Width: 2, Depth: 0.5}}
	a := AbsorptionFlux(64, lines, 0)
	b := AbsorptionFlux(64, lines, 5)

	if math.Abs(a[20]-0.5) > 1e-12 {
		t.Fatalf("line core = %v, want 0.5", a[20])
	}
	for i := 5; i < 64; i++ {
		if math.Abs(b[i]-a[i-5]) > 1e-12 {
			t.Fatalf("shifted flux mismatch at %d", i)
		}
	}
}

func TestDeterministicNoiseReproducible(t *testing.T) {
	a := DeterministicNoise(7, 0.1, 100)
	b := DeterministicNoise(7, 0.1, 100)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic at index %d", i)
		}
		if math.Abs(a[i]) > 0.1 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
	}
}

func TestNaNs(t *testing.T) {
	for i, v := range NaNs(4) {
		if !math.IsNaN(v) {
			t.Fatalf("index %d = %v, want NaN", i, v)
		}
	}
}
