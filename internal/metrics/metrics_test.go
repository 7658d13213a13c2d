package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nirspec/classify"
	"github.com/cwbudde/algo-nirspec/rv"
	"github.com/cwbudde/algo-nirspec/template"
)

func TestRecorderWriteFile(t *testing.T) {
	r := New("mktempl")

	r.Template(template.Template{
		Key:        classify.Key{Type: classify.L3, Gravity: classify.Field},
		Band:       "J",
		Wavelength: []float64{1, 2},
		Skipped:    []template.Skipped{{ID: "a", Reason: template.ReasonNoUncertainty}},
	})
	r.Template(template.Template{
		Key:     classify.Key{Type: classify.L4, Gravity: classify.Gamma},
		Band:    "H",
		Skipped: []template.Skipped{{ID: "b", Reason: template.ReasonTooFew}},
	})
	r.Estimate(rv.Result{Trials: 10, Failed: 2}, 150*time.Millisecond, nil)
	r.Estimate(rv.Result{}, time.Second, errors.New("boom"))

	path := filepath.Join(t.TempDir(), "nirspec.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	for _, want := range []string{
		`nirspec_templates_built_total{band="J",command="mktempl",gravity="field"} 1`,
		`nirspec_templates_empty_total{band="H",command="mktempl",gravity="gamma"} 1`,
		`nirspec_template_members_skipped_total{command="mktempl",reason="no finite uncertainty"} 1`,
		`nirspec_rv_trials_total{command="mktempl"} 10`,
		`nirspec_rv_trials_failed_total{command="mktempl"} 2`,
		`nirspec_rv_estimates_total{command="mktempl",outcome="error"} 1`,
		`nirspec_rv_estimate_duration_seconds_count{command="mktempl"} 2`,
	} {
		assert.True(t, strings.Contains(text, want), "missing %s", want)
	}
}

func TestRecorderGather(t *testing.T) {
	r := New("findrv")

	families, err := r.Registry().Gather()
	require.NoError(t, err)

	// Vectors without children are not exported yet.
	names := make([]string, len(families))
	for i, f := range families {
		names[i] = f.GetName()
	}
	assert.Contains(t, names, "nirspec_rv_trials_total")
	assert.NotContains(t, names, "nirspec_rv_estimates_total")
}

func TestWriteFileError(t *testing.T) {
	err := New("x").WriteFile(filepath.Join(t.TempDir(), "missing", "m.prom"))
	assert.Error(t, err)
}
