package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nirspec/catalog"
	"github.com/cwbudde/algo-nirspec/internal/testutil"
	"github.com/cwbudde/algo-nirspec/spectrum"
)

const pixels = 256

var lines = []testutil.Line{
	{Center: 60, Width: 4, Depth: 0.5},
	{Center: 140, Width: 5, Depth: 0.4},
	{Center: 210, Width: 3, Depth: 0.6},
}

// newCatalog writes a catalog holding a standard (2001, L3, 10 km/s), a
// target redshifted by three pixels (1001) and an object without a
// velocity (3001), and returns the path of a config pointing at it.
func newCatalog(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	ctx := context.Background()
	dir = t.TempDir()

	store, err := catalog.Open(ctx, filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	wl := testutil.LogGrid(1.15, 1.35, pixels)
	for _, obj := range []struct {
		ref   string
		shift float64
	}{{"2001", 0}, {"1001", 3}, {"3001", 0}} {
		require.NoError(t, store.PutObject(ctx, catalog.Object{Ref: obj.ref, SpectralType: "L3", J: 14, K: 12.5}))

		sp, err := spectrum.New(obj.ref, wl, testutil.AbsorptionFlux(pixels, lines, obj.shift), testutil.Const(0, pixels))
		require.NoError(t, err)
		require.NoError(t, store.PutSpectrum(ctx, obj.ref, catalog.NIR, sp))
	}
	require.NoError(t, store.PutStandard(ctx, catalog.Standard{Ref: "2001", NIRType: "L3", RV: 10, RVErr: 0.5}))
	require.NoError(t, store.PutStandard(ctx, catalog.Standard{Ref: "3001", NIRType: "L9", RV: math.NaN()}))

	cfgPath = filepath.Join(dir, "nirspec.yaml")
	body := fmt.Sprintf("paths:\n  catalog: %s\n  template_dir: %s\n  metrics_file: %s\nrv:\n  workers: 2\n",
		filepath.Join(dir, "catalog.db"), filepath.Join(dir, "templates"), filepath.Join(dir, "findrv.prom"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	return dir, cfgPath
}

func TestRunEstimatesRedshift(t *testing.T) {
	dir, cfgPath := newCatalog(t)
	plotPath := filepath.Join(dir, "rv.png")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"-config", cfgPath, "-target", "1001", "-trials", "4", "-plot", plotPath},
		&stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Regexp(t, regexp.MustCompile(`standard\s+2001 \(10\.00 ± 0\.50 km/s\)`), out)
	assert.Regexp(t, regexp.MustCompile(`trials\s+4 \(0 failed\)`), out)

	// A three pixel redshift on this grid is roughly 30 oversampled pixels
	// of about 18.8 km/s each.
	m := regexp.MustCompile(`velocity\s+(-?[0-9.]+) ±`).FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	var v float64
	_, err = fmt.Sscan(m[1], &v)
	require.NoError(t, err)
	assert.InDelta(t, 10+30.1*18.78, v, 25)

	_, err = os.Stat(plotPath)
	require.NoError(t, err)

	prom, err := os.ReadFile(filepath.Join(dir, "findrv.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `nirspec_rv_trials_total{command="findrv"} 4`)
}

func TestRunStandardOverrides(t *testing.T) {
	_, cfgPath := newCatalog(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"-config", cfgPath, "-target", "2001", "-standard", "3001", "-rv", "-4", "-rverr", "0.25", "-trials", "2"},
		&stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Regexp(t, regexp.MustCompile(`velocity\s+-4\.00 ± 0\.25 km/s`), stdout.String())
}

func TestRunErrors(t *testing.T) {
	dir, cfgPath := newCatalog(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no target", []string{"-config", cfgPath}},
		{"unknown target", []string{"-config", cfgPath, "-target", "9999"}},
		{"standard without velocity", []string{"-config", cfgPath, "-target", "1001", "-standard", "3001"}},
		{"bad band", []string{"-config", cfgPath, "-target", "1001", "-band", "OPT"}},
		{"band outside spectrum", []string{"-config", cfgPath, "-target", "1001", "-band", "K"}},
		{"bad plot format", []string{"-config", cfgPath, "-target", "1001", "-trials", "2", "-plot", filepath.Join(dir, "rv.txt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Error(t, run(context.Background(), tt.args, &stdout, &stderr))
		})
	}
}

func TestRunCancelled(t *testing.T) {
	_, cfgPath := newCatalog(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"-config", cfgPath, "-target", "1001"}, &stdout, &stderr)
	assert.ErrorIs(t, err, context.Canceled)
}
