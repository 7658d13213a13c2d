package rv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-nirspec/internal/testutil"
)

func TestRestrictOverlap(t *testing.T) {
	nan := math.NaN()
	target := mustSpectrum(t, "t",
		[]float64{1.0, 1.1, 1.2, 1.3, 1.4},
		[]float64{5, 5, nan, 5, 5},
		[]float64{0.1, 0.1, 0.1, nan, 0.1})
	standard := mustSpectrum(t, "s",
		[]float64{1.1, 1.2, 1.3, 1.5},
		[]float64{7, 7, 7, 7},
		[]float64{0.2, 0.2, 0.2, 0.2})

	tf, tu, sf, su, err := restrictOverlap(target, standard)
	if err != nil {
		t.Fatalf("restrictOverlap: %v", err)
	}

	testutil.RequireSliceNearlyEqual(t, tf, []float64{1, 5, 1, 5, 5}, 0)
	testutil.RequireSliceNearlyEqual(t, tu, []float64{0.1, 0.1, 0.1, 0, 0.1}, 0)
	testutil.RequireSliceNearlyEqual(t, sf, []float64{7, 7, 7, 1}, 0)
	testutil.RequireSliceNearlyEqual(t, su, []float64{0.2, 0.2, 0.2, 0.2}, 0)

	// Inputs stay untouched.
	if target.Flux[0] != 5 || standard.Flux[3] != 7 {
		t.Fatal("restrictOverlap mutated its input")
	}
}

func TestRestrictOverlapTouching(t *testing.T) {
	a := mustSpectrum(t, "a", []float64{1, 2}, []float64{1, 1}, nil)
	b := mustSpectrum(t, "b", []float64{2, 3}, []float64{1, 1}, nil)

	_, _, _, _, err := restrictOverlap(a, b)
	if !errors.Is(err, ErrNoOverlap) {
		t.Fatalf("expected ErrNoOverlap for a single common point, got %v", err)
	}
}

func TestLogGrid(t *testing.T) {
	g := logGrid(1.1, 2.2, 11)
	if g[0] != 1.1 || g[10] != 2.2 {
		t.Fatalf("end points %v, %v", g[0], g[10])
	}

	ratio := g[1] / g[0]
	for i := 2; i < len(g); i++ {
		if r := g[i] / g[i-1]; math.Abs(r-ratio) > 1e-12 {
			t.Fatalf("step %d ratio %v, want %v", i, r, ratio)
		}
	}
}

func TestPrepareLengths(t *testing.T) {
	in := shiftedPair(t, 1, 0.01)
	in.Target = mustSpectrum(t, "short", testutil.LinearGrid(1.2, 1.3, 100), testutil.Const(1, 100), nil)

	p, err := prepare(in, 4)
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	want := pixels * 4
	for name, s := range map[string][]float64{
		"wavelength":   p.wavelength,
		"target":       p.target,
		"target sig":   p.targetSig,
		"standard":     p.standard,
		"standard sig": p.standardSig,
	} {
		if len(s) != want {
			t.Errorf("%s: len %d, want %d", name, len(s), want)
		}
	}

	// Outside the target's range the target is continuum.
	if p.target[0] != 1 || p.target[len(p.target)-1] != 1 {
		t.Errorf("target edges %v, %v", p.target[0], p.target[len(p.target)-1])
	}
	testutil.RequireFinite(t, p.targetSig)
}
