// Package catalog stores object metadata, NIR standards, the exclusion list
// and spectra in a SQLite database.
//
// The database is opened through database/sql with the pure-Go driver
// github.com/glebarez/go-sqlite; no cgo is required.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("catalog: not found")

// Kind selects the spectrum of an object.
type Kind string

// Spectrum kinds.
const (
	NIR Kind = "NIR"
	OPT Kind = "OPT"
)

// Object is the metadata of one target.
type Object struct {
	Ref          string
	Designation  string  // "HH MM SS.S +DD MM SS.S"
	J, H, K      float64 // 2MASS magnitudes, NaN when unknown
	SpectralType string  // NIR type text, e.g. "L3.5γ"
	OpticalType  string
	Young        bool
	Dusty        bool
	Blue         bool
	Binary       bool
	Peculiar     bool
}

// JK returns the J-K color, NaN when either magnitude is unknown.
func (o Object) JK() float64 { return o.J - o.K }

// ShortDesignation returns the condensed designation, see CondenseDesignation.
func (o Object) ShortDesignation() string { return CondenseDesignation(o.Designation) }

// Standard is the NIR spectral standard of a spectral type.
type Standard struct {
	Ref         string
	NIRType     string
	OpticalType string
	RV          float64 // km/s
	RVErr       float64 // km/s
}

// CondenseDesignation turns "HH MM SS.S +DD MM SS.S" into "HHMM+DDMM".
// Strings of any other shape are returned trimmed but otherwise unchanged.
func CondenseDesignation(d string) string {
	f := strings.Fields(d)
	if len(f) != 6 || len(f[3]) < 2 || (f[3][0] != '+' && f[3][0] != '-') {
		return strings.TrimSpace(d)
	}
	return f[0] + f[1] + f[3] + f[4]
}

// Store is a catalog backed by a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS objects (
	ref           TEXT PRIMARY KEY,
	designation   TEXT NOT NULL DEFAULT '',
	j_mag         REAL,
	h_mag         REAL,
	k_mag         REAL,
	spectral_type TEXT NOT NULL DEFAULT '',
	optical_type  TEXT NOT NULL DEFAULT '',
	young         INTEGER NOT NULL DEFAULT 0,
	dusty         INTEGER NOT NULL DEFAULT 0,
	blue          INTEGER NOT NULL DEFAULT 0,
	binary        INTEGER NOT NULL DEFAULT 0,
	peculiar      INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS standards (
	ref          TEXT PRIMARY KEY,
	nir_type     TEXT NOT NULL,
	optical_type TEXT NOT NULL DEFAULT '',
	rv           REAL,
	rv_err       REAL
);

CREATE INDEX IF NOT EXISTS standards_nir_type ON standards (nir_type);

CREATE TABLE IF NOT EXISTS excluded (
	ref TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS spectra (
	ref         TEXT NOT NULL,
	kind        TEXT NOT NULL,
	wavelength  BLOB NOT NULL,
	flux        BLOB NOT NULL,
	uncertainty BLOB NOT NULL,
	PRIMARY KEY (ref, kind)
);
`

// Migrate creates missing tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
