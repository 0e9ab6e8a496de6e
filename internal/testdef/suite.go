package testdef

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
)

// ErrNoFiles is returned by LoadSuite when no pattern matched a file.
var ErrNoFiles = errors.New("no definition files matched")

// Suite is the parsed content of one or more definition files.
type Suite struct {
	// Files are the parsed paths in load order.
	Files []string `json:"files"`
	// Sections from every file, in load order.
	Sections []Section `json:"sections"`
	// Digest is the xxhash64 of all file contents in load order. It lets a
	// run summary be matched to the exact definitions it was produced from.
	Digest uint64 `json:"digest"`
}

// DigestHex renders Digest as 16 hex digits.
func (s *Suite) DigestHex() string {
	return fmt.Sprintf("%016x", s.Digest)
}

// LoadSuite expands each pattern and parses the matches. A pattern without
// glob metacharacters names a file directly and must exist. Glob patterns
// support "**" and are expanded in lexical order; duplicates are loaded once.
func LoadSuite(patterns ...string) (*Suite, error) {
	files, err := expandPatterns(patterns)
	if err != nil {
		return nil, err
	}

	suite := &Suite{Files: files}
	h := xxhash.New()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading definition file %q: %w", path, err)
		}
		sections, err := Parse(bytes.NewReader(data), path)
		if err != nil {
			return nil, err
		}
		_, _ = h.Write(data)
		suite.Sections = append(suite.Sections, sections...)
	}
	suite.Digest = h.Sum64()
	return suite, nil
}

func expandPatterns(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		clean := filepath.Clean(path)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if !hasMeta(pattern) {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("definition file %q: %w", pattern, err)
			}
			add(pattern)
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			return nil, fmt.Errorf("invalid definition pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			add(m)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoFiles, patterns)
	}
	return files, nil
}

func hasMeta(pattern string) bool {
	for _, r := range pattern {
		switch r {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
