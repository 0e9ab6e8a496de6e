// Package config loads shellprobe.toml and resolves it against environment
// variables and command-line flags.
package config

import (
	"fmt"
	"time"
)

// Config is the top-level configuration structure mapping to shellprobe.toml.
type Config struct {
	Subject   SubjectConfig   `toml:"subject"`
	Tests     TestsConfig     `toml:"tests"`
	Features  FeaturesConfig  `toml:"features"`
	Limits    LimitsConfig    `toml:"limits"`
	Timeouts  TimeoutsConfig  `toml:"timeouts"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Scoring   ScoringConfig   `toml:"scoring"`
}

// SubjectConfig maps to the [subject] section: the shell under test.
type SubjectConfig struct {
	Executable string `toml:"executable"`
	// Env replaces the subject environment when non-empty ("KEY=value").
	Env []string `toml:"env"`
}

// TestsConfig maps to the [tests] section.
type TestsConfig struct {
	// Files are definition files or doublestar globs.
	Files  []string `toml:"files"`
	Etalon string   `toml:"etalon"`
	// Scenarios restricts the battery to these IDs. Empty runs all.
	Scenarios []string `toml:"scenarios"`
}

// FeaturesConfig maps to the [features] section: the enabled bonus areas.
type FeaturesConfig struct {
	Logic      bool `toml:"logic"`
	Background bool `toml:"background"`
}

// LimitsConfig maps to the [limits] section: scale test sizes.
type LimitsConfig struct {
	LongCommandLength int `toml:"long_command_length"`
	ManyArgsCount     int `toml:"many_args_count"`
	LongPipeLength    int `toml:"long_pipe_length"`
}

// TimeoutsConfig maps to the [timeouts] section.
type TimeoutsConfig struct {
	Case  Duration `toml:"case"`
	Exit  Duration `toml:"exit"`
	Scale Duration `toml:"scale"`
}

// WorkspaceConfig maps to the [workspace] section.
type WorkspaceConfig struct {
	ScratchDir   string `toml:"scratch_dir"`
	ArtifactsDir string `toml:"artifacts_dir"`
	KeepScratch  bool   `toml:"keep_scratch"`
	DiffWidth    int    `toml:"diff_width"`
}

// ScoringConfig maps to the [scoring] section.
type ScoringConfig struct {
	Base  int `toml:"base"`
	Bonus int `toml:"bonus"`
}

// Duration decodes TOML strings such as "3s" or "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}
