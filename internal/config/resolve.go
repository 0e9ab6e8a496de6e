package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ConfigSource identifies where a configuration value came from.
type ConfigSource string

const (
	// SourceDefault indicates the value came from built-in defaults.
	SourceDefault ConfigSource = "default"
	// SourceFile indicates the value came from the shellprobe.toml config file.
	SourceFile ConfigSource = "file"
	// SourceEnv indicates the value came from an environment variable.
	SourceEnv ConfigSource = "env"
	// SourceCLI indicates the value came from a CLI flag.
	SourceCLI ConfigSource = "cli"
)

// ResolvedConfig holds the fully-resolved configuration with source tracking.
// The Config field contains the merged values; Sources tracks where each came from.
type ResolvedConfig struct {
	Config  *Config
	Sources map[string]ConfigSource // key is dotted path, e.g., "subject.executable"
	Path    string                  // path to the config file used (empty if none)
	// EnvIssues are environment values that could not be parsed. They are
	// reported by Validate callers alongside file issues.
	EnvIssues []ValidationIssue
}

// CLIOverrides captures flag values that can override configuration.
// Nil values mean "not set" (do not override).
type CLIOverrides struct {
	Executable    *string
	Tests         []string
	Etalon        *string
	Scenarios     []string
	Logic         *bool
	Background    *bool
	ManyArgsCount *int
	ScratchDir    *string
	ArtifactsDir  *string
	KeepScratch   *bool
}

// EnvFunc is a function that looks up environment variables.
// Default implementation is os.LookupEnv. Injected for testability.
type EnvFunc func(key string) (string, bool)

// Resolve merges configuration from all sources in priority order:
// CLI flags > environment variables > config file > defaults.
//
// File values override defaults only when non-zero: an empty string, a zero
// number, or false in the file means "not set". All defaults for booleans
// are false, so this loses nothing.
func Resolve(defaults *Config, fileConfig *Config, envFn EnvFunc, overrides *CLIOverrides) *ResolvedConfig {
	rc := &ResolvedConfig{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}

	if defaults == nil {
		defaults = &Config{}
	}
	if envFn == nil {
		envFn = func(string) (string, bool) { return "", false }
	}
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	// Layer 1: defaults.
	mergeConfig(rc, defaults, SourceDefault, true)

	// Layer 2: file.
	if fileConfig != nil {
		mergeConfig(rc, fileConfig, SourceFile, false)
	}

	// Layer 3: environment.
	resolveFromEnv(rc, envFn)

	// Layer 4: CLI.
	resolveFromCLI(rc, overrides)

	return rc
}

// --- Layers 1 and 2 ---

// mergeConfig copies src into rc. When all is set every field is copied;
// otherwise only non-zero fields are.
func mergeConfig(rc *ResolvedConfig, src *Config, source ConfigSource, all bool) {
	c := rc.Config
	s := rc.Sources

	mergeString(&c.Subject.Executable, src.Subject.Executable, "subject.executable", source, s, all)
	mergeStrings(&c.Subject.Env, src.Subject.Env, "subject.env", source, s, all)

	mergeStrings(&c.Tests.Files, src.Tests.Files, "tests.files", source, s, all)
	mergeString(&c.Tests.Etalon, src.Tests.Etalon, "tests.etalon", source, s, all)
	mergeStrings(&c.Tests.Scenarios, src.Tests.Scenarios, "tests.scenarios", source, s, all)

	mergeBool(&c.Features.Logic, src.Features.Logic, "features.logic", source, s, all)
	mergeBool(&c.Features.Background, src.Features.Background, "features.background", source, s, all)

	mergeInt(&c.Limits.LongCommandLength, src.Limits.LongCommandLength, "limits.long_command_length", source, s, all)
	mergeInt(&c.Limits.ManyArgsCount, src.Limits.ManyArgsCount, "limits.many_args_count", source, s, all)
	mergeInt(&c.Limits.LongPipeLength, src.Limits.LongPipeLength, "limits.long_pipe_length", source, s, all)

	mergeDuration(&c.Timeouts.Case, src.Timeouts.Case, "timeouts.case", source, s, all)
	mergeDuration(&c.Timeouts.Exit, src.Timeouts.Exit, "timeouts.exit", source, s, all)
	mergeDuration(&c.Timeouts.Scale, src.Timeouts.Scale, "timeouts.scale", source, s, all)

	mergeString(&c.Workspace.ScratchDir, src.Workspace.ScratchDir, "workspace.scratch_dir", source, s, all)
	mergeString(&c.Workspace.ArtifactsDir, src.Workspace.ArtifactsDir, "workspace.artifacts_dir", source, s, all)
	mergeBool(&c.Workspace.KeepScratch, src.Workspace.KeepScratch, "workspace.keep_scratch", source, s, all)
	mergeInt(&c.Workspace.DiffWidth, src.Workspace.DiffWidth, "workspace.diff_width", source, s, all)

	mergeInt(&c.Scoring.Base, src.Scoring.Base, "scoring.base", source, s, all)
	mergeInt(&c.Scoring.Bonus, src.Scoring.Bonus, "scoring.bonus", source, s, all)
}

// --- Layer 3: Environment ---

// Environment variable mapping:
//
//	SHELLPROBE_EXE              -> subject.executable
//	SHELLPROBE_TESTS            -> tests.files (comma-separated)
//	SHELLPROBE_ETALON           -> tests.etalon
//	SHELLPROBE_WITH_LOGIC       -> features.logic
//	SHELLPROBE_WITH_BACKGROUND  -> features.background
//	SHELLPROBE_MANY_ARGS_COUNT  -> limits.many_args_count
//	SHELLPROBE_SCRATCH_DIR      -> workspace.scratch_dir
func resolveFromEnv(rc *ResolvedConfig, envFn EnvFunc) {
	c := rc.Config

	if val, ok := envFn("SHELLPROBE_EXE"); ok {
		c.Subject.Executable = val
		rc.Sources["subject.executable"] = SourceEnv
	}
	if val, ok := envFn("SHELLPROBE_TESTS"); ok {
		c.Tests.Files = splitList(val)
		rc.Sources["tests.files"] = SourceEnv
	}
	if val, ok := envFn("SHELLPROBE_ETALON"); ok {
		c.Tests.Etalon = val
		rc.Sources["tests.etalon"] = SourceEnv
	}
	if val, ok := envFn("SHELLPROBE_SCRATCH_DIR"); ok {
		c.Workspace.ScratchDir = val
		rc.Sources["workspace.scratch_dir"] = SourceEnv
	}

	envBool(rc, envFn, "SHELLPROBE_WITH_LOGIC", "features.logic", &c.Features.Logic)
	envBool(rc, envFn, "SHELLPROBE_WITH_BACKGROUND", "features.background", &c.Features.Background)

	if val, ok := envFn("SHELLPROBE_MANY_ARGS_COUNT"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			rc.EnvIssues = append(rc.EnvIssues, ValidationIssue{
				Severity: SeverityError,
				Field:    "limits.many_args_count",
				Message:  fmt.Sprintf("SHELLPROBE_MANY_ARGS_COUNT: invalid integer %q", val),
			})
		} else {
			c.Limits.ManyArgsCount = n
			rc.Sources["limits.many_args_count"] = SourceEnv
		}
	}
}

func envBool(rc *ResolvedConfig, envFn EnvFunc, key, path string, target *bool) {
	val, ok := envFn(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(val))
	if err != nil {
		rc.EnvIssues = append(rc.EnvIssues, ValidationIssue{
			Severity: SeverityError,
			Field:    path,
			Message:  fmt.Sprintf("%s: invalid boolean %q", key, val),
		})
		return
	}
	*target = b
	rc.Sources[path] = SourceEnv
}

// --- Layer 4: CLI overrides ---

func resolveFromCLI(rc *ResolvedConfig, o *CLIOverrides) {
	c := rc.Config
	s := rc.Sources

	if o.Executable != nil {
		c.Subject.Executable = *o.Executable
		s["subject.executable"] = SourceCLI
	}
	if o.Tests != nil {
		c.Tests.Files = append([]string(nil), o.Tests...)
		s["tests.files"] = SourceCLI
	}
	if o.Etalon != nil {
		c.Tests.Etalon = *o.Etalon
		s["tests.etalon"] = SourceCLI
	}
	if o.Scenarios != nil {
		c.Tests.Scenarios = append([]string(nil), o.Scenarios...)
		s["tests.scenarios"] = SourceCLI
	}
	if o.Logic != nil {
		c.Features.Logic = *o.Logic
		s["features.logic"] = SourceCLI
	}
	if o.Background != nil {
		c.Features.Background = *o.Background
		s["features.background"] = SourceCLI
	}
	if o.ManyArgsCount != nil {
		c.Limits.ManyArgsCount = *o.ManyArgsCount
		s["limits.many_args_count"] = SourceCLI
	}
	if o.ScratchDir != nil {
		c.Workspace.ScratchDir = *o.ScratchDir
		s["workspace.scratch_dir"] = SourceCLI
	}
	if o.ArtifactsDir != nil {
		c.Workspace.ArtifactsDir = *o.ArtifactsDir
		s["workspace.artifacts_dir"] = SourceCLI
	}
	if o.KeepScratch != nil {
		c.Workspace.KeepScratch = *o.KeepScratch
		s["workspace.keep_scratch"] = SourceCLI
	}
}

// --- Helpers ---

func mergeString(target *string, value, path string, source ConfigSource, sources map[string]ConfigSource, all bool) {
	if all || value != "" {
		*target = value
		sources[path] = source
	}
}

func mergeStrings(target *[]string, value []string, path string, source ConfigSource, sources map[string]ConfigSource, all bool) {
	if all || len(value) > 0 {
		if value == nil {
			*target = nil
		} else {
			*target = append([]string(nil), value...)
		}
		sources[path] = source
	}
}

func mergeBool(target *bool, value bool, path string, source ConfigSource, sources map[string]ConfigSource, all bool) {
	if all || value {
		*target = value
		sources[path] = source
	}
}

func mergeInt(target *int, value int, path string, source ConfigSource, sources map[string]ConfigSource, all bool) {
	if all || value != 0 {
		*target = value
		sources[path] = source
	}
}

func mergeDuration(target *Duration, value Duration, path string, source ConfigSource, sources map[string]ConfigSource, all bool) {
	if all || value.Duration != time.Duration(0) {
		*target = value
		sources[path] = source
	}
}

// splitList splits a comma-separated environment value, dropping blanks.
func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
