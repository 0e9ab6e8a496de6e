package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is the name of the shellprobe configuration file.
const ConfigFileName = "shellprobe.toml"

// FindConfigFile returns the nearest shellprobe.toml in startDir or one of
// its ancestors, or "" when none exists up to the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	for ; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			return "", nil
		}
	}
}

// LoadFromFile decodes path into a Config. The returned metadata lets
// Validate report undecoded keys.
func LoadFromFile(path string) (*Config, toml.MetaData, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err == nil {
		return &cfg, md, nil
	}
	var perr toml.ParseError
	if errors.As(err, &perr) && perr.Position.Line > 0 {
		return nil, md, fmt.Errorf("loading config %s:%d: %w", path, perr.Position.Line, err)
	}
	return nil, md, fmt.Errorf("loading config %s: %w", path, err)
}
