package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/scenario"
)

// ValidationSeverity indicates whether a validation issue is an error or warning.
type ValidationSeverity string

const (
	// SeverityError indicates a fatal validation issue; the configuration is unusable.
	SeverityError ValidationSeverity = "error"
	// SeverityWarning indicates an informational validation issue; the configuration works
	// but may have problems.
	SeverityWarning ValidationSeverity = "warning"
)

// ValidationIssue represents a single validation finding.
type ValidationIssue struct {
	Severity ValidationSeverity
	Field    string // dotted path, e.g., "project.name"
	Message  string
}

// ValidationResult holds all validation findings.
type ValidationResult struct {
	Issues []ValidationIssue
}

// HasErrors returns true if any issue has error severity.
func (vr *ValidationResult) HasErrors() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// HasWarnings returns true if any issue has warning severity.
func (vr *ValidationResult) HasWarnings() bool {
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only error-severity issues.
func (vr *ValidationResult) Errors() []ValidationIssue {
	var errs []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityError {
			errs = append(errs, issue)
		}
	}
	return errs
}

// Warnings returns only warning-severity issues.
func (vr *ValidationResult) Warnings() []ValidationIssue {
	var warns []ValidationIssue
	for _, issue := range vr.Issues {
		if issue.Severity == SeverityWarning {
			warns = append(warns, issue)
		}
	}
	return warns
}

// Validate checks the configuration for correctness and completeness.
// It performs structural validation, semantic validation, and unknown key detection.
//
// Parameters:
//   - cfg: the configuration to validate
//   - meta: TOML metadata from BurntSushi/toml (may be nil if no file was loaded)
//
// Returns validation results. Check HasErrors() to determine if the config is usable.
func Validate(cfg *Config, meta *toml.MetaData) *ValidationResult {
	vr := &ValidationResult{}

	if cfg == nil {
		addError(vr, "", "configuration is nil")
		return vr
	}

	validateSubject(vr, &cfg.Subject)
	validateTests(vr, &cfg.Tests)
	validateLimits(vr, &cfg.Limits)
	validateTimeouts(vr, &cfg.Timeouts)
	validateWorkspace(vr, &cfg.Workspace)
	validateScoring(vr, &cfg.Scoring)
	validateUnknownKeys(vr, meta)

	return vr
}

// validateSubject checks the [subject] section.
func validateSubject(vr *ValidationResult, s *SubjectConfig) {
	if s.Executable == "" {
		addError(vr, "subject.executable", "must not be empty")
	} else if _, err := os.Stat(s.Executable); err != nil {
		addWarning(vr, "subject.executable",
			fmt.Sprintf("file %q does not exist", s.Executable))
	}

	for i, kv := range s.Env {
		if !strings.Contains(kv, "=") {
			addError(vr, fmt.Sprintf("subject.env[%d]", i),
				fmt.Sprintf("%q is not of the form KEY=value", kv))
		}
	}
}

// validateTests checks the [tests] section.
func validateTests(vr *ValidationResult, t *TestsConfig) {
	if len(t.Files) == 0 {
		addError(vr, "tests.files", "must list at least one definition file")
	}
	for i, pattern := range t.Files {
		field := fmt.Sprintf("tests.files[%d]", i)
		if pattern == "" {
			addError(vr, field, "must not be an empty string")
			continue
		}
		if !doublestar.ValidatePattern(filepath.ToSlash(pattern)) {
			addError(vr, field, fmt.Sprintf("invalid glob pattern %q", pattern))
		}
	}

	if t.Etalon != "" {
		if _, err := os.Stat(t.Etalon); err != nil {
			addWarning(vr, "tests.etalon",
				fmt.Sprintf("file %q does not exist", t.Etalon))
		}
	}

	known := make(map[string]bool)
	for _, id := range scenario.IDs() {
		known[id] = true
	}
	for i, id := range t.Scenarios {
		if !known[id] {
			addError(vr, fmt.Sprintf("tests.scenarios[%d]", i),
				fmt.Sprintf("unknown scenario %q; must be one of: %s", id, strings.Join(scenario.IDs(), ", ")))
		}
	}
}

// validateLimits checks the [limits] section.
func validateLimits(vr *ValidationResult, l *LimitsConfig) {
	positive(vr, "limits.long_command_length", l.LongCommandLength)
	positive(vr, "limits.many_args_count", l.ManyArgsCount)
	positive(vr, "limits.long_pipe_length", l.LongPipeLength)
}

// validateTimeouts checks the [timeouts] section.
func validateTimeouts(vr *ValidationResult, t *TimeoutsConfig) {
	for _, d := range []struct {
		field string
		value Duration
	}{
		{"timeouts.case", t.Case},
		{"timeouts.exit", t.Exit},
		{"timeouts.scale", t.Scale},
	} {
		if d.value.Duration <= 0 {
			addError(vr, d.field, fmt.Sprintf("must be positive, got %s", d.value.Duration))
		}
	}
}

// validateWorkspace checks the [workspace] section.
func validateWorkspace(vr *ValidationResult, w *WorkspaceConfig) {
	if w.ScratchDir == "" {
		addError(vr, "workspace.scratch_dir", "must not be empty")
	} else if _, err := harness.NewScratchDir(w.ScratchDir); err != nil {
		addError(vr, "workspace.scratch_dir", err.Error())
	}

	if w.DiffWidth != 0 && w.DiffWidth < 20 {
		addWarning(vr, "workspace.diff_width",
			fmt.Sprintf("%d is too narrow; the default width is used instead", w.DiffWidth))
	}
}

// validateScoring checks the [scoring] section.
func validateScoring(vr *ValidationResult, s *ScoringConfig) {
	if s.Base < 0 {
		addError(vr, "scoring.base", "must not be negative")
	}
	if s.Bonus < 0 {
		addError(vr, "scoring.bonus", "must not be negative")
	}
}

func positive(vr *ValidationResult, field string, n int) {
	if n <= 0 {
		addError(vr, field, fmt.Sprintf("must be positive, got %d", n))
	}
}

// validateUnknownKeys checks for TOML keys that did not map to any config struct field.
func validateUnknownKeys(vr *ValidationResult, meta *toml.MetaData) {
	if meta == nil {
		return
	}

	for _, key := range meta.Undecoded() {
		path := strings.Join(key, ".")
		addWarning(vr, path, "unknown configuration key")
	}
}

// addError appends an error-severity issue to the validation result.
func addError(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityError,
		Field:    field,
		Message:  message,
	})
}

// addWarning appends a warning-severity issue to the validation result.
func addWarning(vr *ValidationResult, field, message string) {
	vr.Issues = append(vr.Issues, ValidationIssue{
		Severity: SeverityWarning,
		Field:    field,
		Message:  message,
	})
}
