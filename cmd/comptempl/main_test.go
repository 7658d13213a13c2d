package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nirspec/catalog"
	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/internal/testutil"
	"github.com/cwbudde/algo-nirspec/spectrum"
	"github.com/cwbudde/algo-nirspec/template"
)

const pixels = 120

var lines = []testutil.Line{
	{Center: 30, Width: 3, Depth: 0.4},
	{Center: 80, Width: 4, Depth: 0.3},
}

type fixture struct {
	dir    string
	config string
}

func processed(t *testing.T, id string, seed int64, shift float64) spectrum.Spectrum {
	t.Helper()

	flux := testutil.AbsorptionFlux(pixels, lines, shift)
	noise := testutil.DeterministicNoise(seed, 0.01, pixels)
	for i := range flux {
		flux[i] += noise[i]
	}
	sp, err := spectrum.New(id, testutil.LinearGrid(1.0, 1.35, pixels), flux, testutil.Const(0.01, pixels))
	require.NoError(t, err)
	out, err := spectrum.J.Process(sp)
	require.NoError(t, err)

	return out
}

// newFixture saves J templates for L3γ, L3β and field L2, L3 and L4 whose
// lines sit 4 pixels blue, at rest and 4 pixels red. There is no field L5.
// The catalog holds object 1001, an L4 look-alike.
func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	tdir := template.Dir(filepath.Join(dir, "templates"))

	seed := int64(1)
	save := func(key classify.Key, shift float64) {
		members := make([]template.Member, 3)
		for i := range members {
			id := fmt.Sprintf("%s-%d", key, i)
			members[i] = template.Member{ID: id, Band: "J", Spectrum: processed(t, id, seed, shift)}
			seed++
		}
		tpl, err := template.Build(members, template.WithKey(key), template.WithBand("J"))
		require.NoError(t, err)
		require.False(t, tpl.Empty())
		_, err = tdir.Save(tpl)
		require.NoError(t, err)
	}
	save(classify.Key{Type: classify.L3, Gravity: classify.Gamma}, 0)
	save(classify.Key{Type: classify.L3, Gravity: classify.Beta}, 0)
	save(classify.Key{Type: classify.L2, Gravity: classify.Field}, -4)
	save(classify.Key{Type: classify.L3, Gravity: classify.Field}, 0)
	save(classify.Key{Type: classify.L4, Gravity: classify.Field}, 4)

	store, err := catalog.Open(ctx, filepath.Join(dir, "catalog.db"))
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.PutObject(ctx, catalog.Object{Ref: "1001", SpectralType: "L3γ", J: 14, K: 12}))
	sp, err := spectrum.New("1001", testutil.LinearGrid(1.0, 1.35, pixels),
		testutil.AbsorptionFlux(pixels, lines, 4), testutil.Const(0.01, pixels))
	require.NoError(t, err)
	require.NoError(t, store.PutSpectrum(ctx, "1001", catalog.NIR, sp))

	cfgPath := filepath.Join(dir, "nirspec.yaml")
	body := fmt.Sprintf(`paths:
  catalog: %s
  template_dir: %s
  figure_dir: %s
  metrics_file: %s
template:
  types: [L2, L3, L4, L5]
  bands: [J]
`,
		filepath.Join(dir, "catalog.db"),
		filepath.Join(dir, "templates"),
		filepath.Join(dir, "figures"),
		filepath.Join(dir, "comptempl.prom"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	return fixture{dir: dir, config: cfgPath}
}

func TestRunComparesComposite(t *testing.T) {
	fx := newFixture(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"-config", fx.config, "-type", "L3", "-gravities", "g,b"},
		&stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Regexp(t, `J\s+L2\s+\d`, out)
	assert.Regexp(t, `J\s+L4\s+\d`, out)
	assert.NotRegexp(t, `J\s+L5`, out)
	assert.Regexp(t, `best\s+J\s+L3\b`, out)

	logs := stderr.String()
	assert.Contains(t, logs, "run_id=")
	assert.Contains(t, logs, "composite built")
	assert.Contains(t, logs, "no field template")

	info, err := os.Stat(filepath.Join(fx.dir, "figures", "L3_vs_field.png"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	prom, err := os.ReadFile(filepath.Join(fx.dir, "comptempl.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), `command="comptempl"`)
	assert.Contains(t, string(prom), `gravity="young"`)
}

func TestRunSingleYoungTemplate(t *testing.T) {
	fx := newFixture(t)
	out := filepath.Join(fx.dir, "single.svg")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"-config", fx.config, "-type", "L3", "-gravities", "g,y", "-compare", "L3,L4", "-out", out},
		&stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Regexp(t, `best\s+J\s+L3\b`, stdout.String())
	assert.Contains(t, stderr.String(), "no young template")
	assert.NotContains(t, stderr.String(), "composite built")
	assert.FileExists(t, out)
}

func TestRunComparesObject(t *testing.T) {
	fx := newFixture(t)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"-config", fx.config, "-type", "L3", "-object", "1001"},
		&stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.Regexp(t, `best\s+J\s+L4\b`, stdout.String())
	assert.FileExists(t, filepath.Join(fx.dir, "figures", "1001_vs_field.png"))
}

func TestRunErrors(t *testing.T) {
	fx := newFixture(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing type", []string{"-config", fx.config}, "-type is required"},
		{"bad type", []string{"-config", fx.config, "-type", "Q7"}, ""},
		{"bad gravity", []string{"-config", fx.config, "-type", "L3", "-gravities", "z"}, ""},
		{"no young templates", []string{"-config", fx.config, "-type", "L3", "-gravities", "y"}, "no young templates"},
		{"unknown object", []string{"-config", fx.config, "-type", "L3", "-object", "9999"}, ""},
		{"bad flag", []string{"-nope"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestResidual(t *testing.T) {
	s, err := spectrum.New("s", []float64{1, 2, 3}, []float64{1, 1, 1}, testutil.Const(0, 3))
	require.NoError(t, err)

	tpl := template.Template{
		Wavelength: []float64{0, 1.5, 2.5, 4},
		Mean:       []float64{5, 1.5, 0.5, 5},
	}
	got, err := residual(s, tpl)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-12)

	tpl = template.Template{Wavelength: []float64{5, 6}, Mean: []float64{1, 1}}
	got, err = residual(s, tpl)
	require.ErrorIs(t, err, errNoOverlap)
	assert.True(t, math.IsNaN(got))
}

func TestClosest(t *testing.T) {
	_, ok := closest(nil)
	assert.False(t, ok)

	rows := []row{
		{key: classify.Key{Type: classify.L2}, rms: 0.3},
		{key: classify.Key{Type: classify.L3}, rms: 0.1},
		{key: classify.Key{Type: classify.L4}, rms: 0.1},
	}
	got, ok := closest(rows)
	require.True(t, ok)
	assert.Equal(t, classify.L3, got.key.Type)
}
