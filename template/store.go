package template

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-nirspec/classify"
)

// FileName returns the file name of the template for key and band, for
// example "L3J_f.txt". Templates of unspecified gravity omit the suffix.
func FileName(key classify.Key, band string) string {
	if code := key.Gravity.Code(); code != "" {
		return key.Type.String() + band + "_" + code + ".txt"
	}
	return key.Type.String() + band + ".txt"
}

// Dir stores templates as text files in a directory.
type Dir string

// Path returns the file path of the template for key and band.
func (d Dir) Path(key classify.Key, band string) string {
	return filepath.Join(string(d), FileName(key, band))
}

// Save writes t to the file named after its key and band, creating the
// directory if needed. Empty templates are not written.
func (d Dir) Save(t Template) (string, error) {
	if t.Empty() {
		return "", fmt.Errorf("template: %s %s: nothing to save", t.Key, t.Band)
	}

	if err := os.MkdirAll(string(d), 0o755); err != nil {
		return "", fmt.Errorf("template: %w", err)
	}

	path := d.Path(t.Key, t.Band)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("template: %w", err)
	}

	if err := Write(f, t); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("template: %w", err)
	}

	return path, nil
}

// Load reads the template for key and band.
func (d Dir) Load(key classify.Key, band string) (Template, error) {
	path := d.Path(key, band)

	f, err := os.Open(path)
	if err != nil {
		return Template{}, fmt.Errorf("template: %w", err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return Template{}, fmt.Errorf("%s: %w", path, err)
	}

	t.Key = key
	t.Band = band

	return t, nil
}
