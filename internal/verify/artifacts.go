package verify

import (
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names. They are fixed so that
// `diff output_expected.txt output_got.txt` keeps working between runs.
const (
	ExpectedFile = "output_expected.txt"
	ActualFile   = "output_got.txt"
)

// Artifacts writes the expected and actual output of a failed comparison to
// disk for inspection with an external diff tool.
type Artifacts struct {
	Dir string
}

// Paths returns the expected and actual artifact paths.
func (a Artifacts) Paths() (expected, actual string) {
	return filepath.Join(a.Dir, ExpectedFile), filepath.Join(a.Dir, ActualFile)
}

// Write materialises both outputs, replacing earlier artifacts.
func (a Artifacts) Write(expected, actual string) (expectedPath, actualPath string, err error) {
	if a.Dir != "" {
		if err := os.MkdirAll(a.Dir, 0o755); err != nil {
			return "", "", fmt.Errorf("creating artifacts dir: %w", err)
		}
	}
	expectedPath, actualPath = a.Paths()
	if err := os.WriteFile(expectedPath, []byte(expected), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", ExpectedFile, err)
	}
	if err := os.WriteFile(actualPath, []byte(actual), 0o644); err != nil {
		return "", "", fmt.Errorf("writing %s: %w", ActualFile, err)
	}
	return expectedPath, actualPath, nil
}
