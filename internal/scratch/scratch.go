package scratch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultPath is where the raw export is kept between fetch and parse
const DefaultPath = "/tmp/londonhydro.csv"

// Write stores the raw export at path, replacing whatever a previous run left
func Write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing scratch file: %w", err)
	}

	return nil
}

// Open returns a reader over the stored export. The caller closes it.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scratch file: %w", err)
	}
	return f, nil
}
