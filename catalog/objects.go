package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cwbudde/algo-nirspec/classify"
)

const objectColumns = `ref, designation, j_mag, h_mag, k_mag, spectral_type, optical_type,
	young, dusty, blue, binary, peculiar`

// PutObject inserts or replaces o.
func (s *Store) PutObject(ctx context.Context, o Object) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO objects (`+objectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Ref, o.Designation, nullable(o.J), nullable(o.H), nullable(o.K),
		o.SpectralType, o.OpticalType,
		boolInt(o.Young), boolInt(o.Dusty), boolInt(o.Blue), boolInt(o.Binary), boolInt(o.Peculiar))
	if err != nil {
		return fmt.Errorf("catalog: put object %s: %w", o.Ref, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(r rowScanner) (Object, error) {
	var (
		o       Object
		j, h, k sql.NullFloat64
	)
	err := r.Scan(&o.Ref, &o.Designation, &j, &h, &k, &o.SpectralType, &o.OpticalType,
		&o.Young, &o.Dusty, &o.Blue, &o.Binary, &o.Peculiar)
	if err != nil {
		return Object{}, err
	}
	o.J, o.H, o.K = orNaN(j), orNaN(h), orNaN(k)
	return o, nil
}

// Object returns the object with the given ref.
func (s *Store) Object(ctx context.Context, ref string) (Object, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+objectColumns+` FROM objects WHERE ref = ?`, ref)

	o, err := scanObject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Object{}, fmt.Errorf("%w: object %s", ErrNotFound, ref)
	}
	if err != nil {
		return Object{}, fmt.Errorf("catalog: object %s: %w", ref, err)
	}

	return o, nil
}

// ObjectsByType returns the objects whose NIR type parses to typ, ordered by
// J-K color. Objects without a color sort last; ties keep ref order.
func (s *Store) ObjectsByType(ctx context.Context, typ classify.SpectralType) ([]Object, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+objectColumns+` FROM objects ORDER BY ref`)
	if err != nil {
		return nil, fmt.Errorf("catalog: objects: %w", err)
	}
	defer rows.Close()

	var out []Object
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: objects: %w", err)
		}
		t, _, err := classify.ParseSpectralType(o.SpectralType)
		if err != nil || t != typ {
			continue
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: objects: %w", err)
	}

	sort.SliceStable(out, func(a, b int) bool {
		ca, cb := out[a].JK(), out[b].JK()
		if math.IsNaN(cb) {
			return !math.IsNaN(ca)
		}
		return ca < cb
	})

	return out, nil
}

// Exclude adds ref to the exclusion list.
func (s *Store) Exclude(ctx context.Context, ref string) error {
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO excluded (ref) VALUES (?)`, ref); err != nil {
		return fmt.Errorf("catalog: exclude %s: %w", ref, err)
	}
	return nil
}

// Excluded returns the set of excluded refs.
func (s *Store) Excluded(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT ref FROM excluded`)
	if err != nil {
		return nil, fmt.Errorf("catalog: excluded: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("catalog: excluded: %w", err)
		}
		out[ref] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: excluded: %w", err)
	}

	return out, nil
}

// PutStandard inserts or replaces st.
func (s *Store) PutStandard(ctx context.Context, st Standard) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR REPLACE INTO standards (ref, nir_type, optical_type, rv, rv_err)
		VALUES (?, ?, ?, ?, ?)`,
		st.Ref, st.NIRType, st.OpticalType, nullable(st.RV), nullable(st.RVErr))
	if err != nil {
		return fmt.Errorf("catalog: put standard %s: %w", st.Ref, err)
	}
	return nil
}

func scanStandard(r rowScanner) (Standard, error) {
	var (
		st        Standard
		rv, rvErr sql.NullFloat64
	)
	if err := r.Scan(&st.Ref, &st.NIRType, &st.OpticalType, &rv, &rvErr); err != nil {
		return Standard{}, err
	}
	st.RV, st.RVErr = orNaN(rv), orNaN(rvErr)
	return st, nil
}

// Standard returns the NIR standard of typ.
func (s *Store) Standard(ctx context.Context, typ classify.SpectralType) (Standard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT ref, nir_type, optical_type, rv, rv_err
		FROM standards WHERE nir_type = ? ORDER BY ref LIMIT 1`, typ.String())

	st, err := scanStandard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Standard{}, fmt.Errorf("%w: standard for %s", ErrNotFound, typ)
	}
	if err != nil {
		return Standard{}, fmt.Errorf("catalog: standard %s: %w", typ, err)
	}

	return st, nil
}

// StandardByRef returns the standard entry of ref.
func (s *Store) StandardByRef(ctx context.Context, ref string) (Standard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT ref, nir_type, optical_type, rv, rv_err
		FROM standards WHERE ref = ?`, ref)

	st, err := scanStandard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Standard{}, fmt.Errorf("%w: standard %s", ErrNotFound, ref)
	}
	if err != nil {
		return Standard{}, fmt.Errorf("catalog: standard %s: %w", ref, err)
	}

	return st, nil
}

// Candidates returns the objects of typ as selection candidates, with the
// gravity parsed from their type text and the standard and exclusion flags
// resolved. The order is that of ObjectsByType.
func (s *Store) Candidates(ctx context.Context, typ classify.SpectralType) ([]classify.Candidate, error) {
	objs, err := s.ObjectsByType(ctx, typ)
	if err != nil {
		return nil, err
	}

	excluded, err := s.Excluded(ctx)
	if err != nil {
		return nil, err
	}

	stdRef := ""
	if st, err := s.Standard(ctx, typ); err == nil {
		stdRef = st.Ref
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	out := make([]classify.Candidate, len(objs))
	for i, o := range objs {
		_, grav, _ := classify.ParseSpectralType(o.SpectralType)
		out[i] = classify.Candidate{
			Ref:      o.Ref,
			Gravity:  grav,
			Young:    o.Young,
			Blue:     o.Blue,
			Dusty:    o.Dusty,
			Binary:   o.Binary,
			Peculiar: o.Peculiar,
			Standard: o.Ref == stdRef,
			Excluded: excluded[o.Ref],
		}
	}

	return out, nil
}
