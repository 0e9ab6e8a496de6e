package harness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnsafeScratchDir is returned for scratch paths that must never be
// removed recursively.
var ErrUnsafeScratchDir = errors.New("refusing to use as scratch directory")

// ScratchDir is the subject's working directory. It is wiped between
// scenario groups that create files, so one scenario cannot see another's
// leftovers.
type ScratchDir struct {
	path string
}

// NewScratchDir resolves path to an absolute directory. The directory is not
// created until Recreate is called.
func NewScratchDir(path string) (*ScratchDir, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrUnsafeScratchDir)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving scratch directory %q: %w", path, err)
	}
	if isProtected(abs) {
		return nil, fmt.Errorf("%w: %s", ErrUnsafeScratchDir, abs)
	}
	return &ScratchDir{path: abs}, nil
}

// Path returns the absolute scratch directory path.
func (d *ScratchDir) Path() string {
	return d.path
}

// Recreate removes the directory with all content and creates it empty.
func (d *ScratchDir) Recreate() error {
	if err := d.Remove(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	return nil
}

// Remove deletes the directory. A missing directory is not an error.
func (d *ScratchDir) Remove() error {
	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("removing scratch directory: %w", err)
	}
	return nil
}

func isProtected(abs string) bool {
	if abs == filepath.VolumeName(abs)+string(filepath.Separator) {
		return true
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == abs {
		return true
	}
	if wd, err := os.Getwd(); err == nil && filepath.Clean(wd) == abs {
		return true
	}
	return false
}
