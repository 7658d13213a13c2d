package template

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-nirspec/classify"
)

func sampleTemplate() Template {
	return Template{
		Key:        classify.Key{Type: classify.L5, Gravity: classify.Field},
		Band:       "K",
		Wavelength: []float64{1.91, 1.9123456789012345, 2.0},
		Mean:       []float64{1, 0.1 + 0.2, math.NaN()},
		Variance:   []float64{0, 1.0 / 3, math.NaN()},
		Min:        []float64{1, 0.25, math.NaN()},
		Max:        []float64{1, 1e-300, math.NaN()},
		Used:       3,
	}
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleTemplate()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1.91\t1\t0\t1\t1", lines[0])
	assert.Equal(t, "2\tNaN\tNaN\tNaN\tNaN", lines[2])
	assert.Len(t, strings.Split(lines[1], "\t"), 5)
}

func TestWriteReadRoundTrip(t *testing.T) {
	want := sampleTemplate()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, want))

	got, err := Read(&buf)
	require.NoError(t, err)

	for name, pair := range map[string][2][]float64{
		"wavelength": {got.Wavelength, want.Wavelength},
		"mean":       {got.Mean, want.Mean},
		"variance":   {got.Variance, want.Variance},
		"min":        {got.Min, want.Min},
		"max":        {got.Max, want.Max},
	} {
		require.Len(t, pair[0], len(pair[1]), name)
		for i := range pair[1] {
			if math.IsNaN(pair[1][i]) {
				assert.True(t, math.IsNaN(pair[0][i]), "%s[%d]", name, i)
				continue
			}
			assert.Equal(t, pair[1][i], pair[0][i], "%s[%d]", name, i)
		}
	}
}

func TestReadSkipsComments(t *testing.T) {
	in := "# wl\tmean\tvar\tmin\tmax\n1.0\t2\t0.5\t1\t3\n\n1.1\t2\t0.5\t1\t3\n"

	got, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 1.1}, got.Wavelength)
	assert.Equal(t, []float64{3, 3}, got.Max)
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"too few columns":    "1\t2\t3\t4\n",
		"not a number":       "1\t2\tx\t4\t5\n",
		"decreasing grid":    "2\t1\t0\t1\t1\n1\t1\t0\t1\t1\n",
		"inconsistent width": "1\t1\t0\t1\t1\n2\t1\t0\t1\n",
	}

	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}
