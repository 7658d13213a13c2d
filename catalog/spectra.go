package catalog

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-nirspec/spectrum"
)

// ErrCorrupt reports a stored spectrum that cannot be decoded.
var ErrCorrupt = errors.New("catalog: corrupt spectrum blob")

// PutSpectrum stores s as the kind spectrum of ref, replacing any previous one.
func (s *Store) PutSpectrum(ctx context.Context, ref string, kind Kind, sp spectrum.Spectrum) error {
	if err := sp.Validate(); err != nil {
		return fmt.Errorf("catalog: put spectrum %s/%s: %w", ref, kind, err)
	}

	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO spectra (ref, kind, wavelength, flux, uncertainty)
		VALUES (?, ?, ?, ?, ?)`,
		ref, string(kind), encodeFloats(sp.Wavelength), encodeFloats(sp.Flux), encodeFloats(sp.Uncertainty))
	if err != nil {
		return fmt.Errorf("catalog: put spectrum %s/%s: %w", ref, kind, err)
	}

	return nil
}

// Spectrum returns the kind spectrum of ref. Its Object is set to ref.
func (s *Store) Spectrum(ctx context.Context, ref string, kind Kind) (spectrum.Spectrum, error) {
	var wl, flux, unc []byte

	err := s.db.QueryRowContext(ctx, `SELECT wavelength, flux, uncertainty FROM spectra
		WHERE ref = ? AND kind = ?`, ref, string(kind)).Scan(&wl, &flux, &unc)
	if errors.Is(err, sql.ErrNoRows) {
		return spectrum.Spectrum{}, fmt.Errorf("%w: spectrum %s/%s", ErrNotFound, ref, kind)
	}
	if err != nil {
		return spectrum.Spectrum{}, fmt.Errorf("catalog: spectrum %s/%s: %w", ref, kind, err)
	}

	cols := make([][]float64, 3)
	for i, b := range [][]byte{wl, flux, unc} {
		if cols[i], err = decodeFloats(b); err != nil {
			return spectrum.Spectrum{}, fmt.Errorf("spectrum %s/%s: %w", ref, kind, err)
		}
	}

	sp, err := spectrum.New(ref, cols[0], cols[1], cols[2])
	if err != nil {
		return spectrum.Spectrum{}, fmt.Errorf("%w: %s/%s: %w", ErrCorrupt, ref, kind, err)
	}

	return sp, nil
}

// encodeFloats packs x as little-endian IEEE 754 doubles.
func encodeFloats(x []float64) []byte {
	b := make([]byte, 8*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(v))
	}
	return b
}

func decodeFloats(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorrupt, len(b))
	}
	x := make([]float64, len(b)/8)
	for i := range x {
		x[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return x, nil
}
