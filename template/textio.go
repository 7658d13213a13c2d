package template

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrFormat reports a malformed template file.
var ErrFormat = errors.New("template: malformed template text")

const columns = 5

// Write stores t as tab-delimited text, one row per bin with the columns
// wavelength, mean, variance, min and max. Numbers use the shortest
// representation that parses back to the same float64.
func Write(w io.Writer, t Template) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	row := make([]string, columns)
	for i := range t.Wavelength {
		for j, v := range [columns]float64{t.Wavelength[i], t.Mean[i], t.Variance[i], t.Min[i], t.Max[i]} {
			row[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("template: write row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("template: write: %w", err)
	}

	return nil
}

// Read parses text produced by Write. Lines starting with '#' are ignored.
// The returned template carries no key, band or member counts.
func Read(r io.Reader) (Template, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = columns
	cr.ReuseRecord = true

	var t Template
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Template{}, fmt.Errorf("%w: %w", ErrFormat, err)
		}

		var vals [columns]float64
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return Template{}, fmt.Errorf("%w: row %d column %d: %w", ErrFormat, line, j+1, err)
			}
			vals[j] = v
		}

		t.Wavelength = append(t.Wavelength, vals[0])
		t.Mean = append(t.Mean, vals[1])
		t.Variance = append(t.Variance, vals[2])
		t.Min = append(t.Min, vals[3])
		t.Max = append(t.Max, vals[4])
	}

	for i := 1; i < len(t.Wavelength); i++ {
		if !(t.Wavelength[i] > t.Wavelength[i-1]) {
			return Template{}, fmt.Errorf("%w: row %d: wavelength not increasing", ErrFormat, i+1)
		}
	}

	return t, nil
}
