// Package verify compares what the subject did with what it should have done.
package verify

import (
	"errors"
	"fmt"
)

// MismatchKind distinguishes the ways a comparison can fail.
type MismatchKind string

const (
	// KindOutput is a full-text output difference.
	KindOutput MismatchKind = "output"
	// KindLine is the first differing line of a line-by-line comparison.
	KindLine MismatchKind = "line"
	// KindLineCount means every overlapping line matched but the line counts
	// differ.
	KindLineCount MismatchKind = "line_count"
	// KindExitCode is an exit status difference.
	KindExitCode MismatchKind = "exit_code"
)

// ErrMismatch is matched by errors.Is on every *MismatchError.
var ErrMismatch = errors.New("mismatch")

// MismatchError reports a subject result that differs from the expectation.
type MismatchError struct {
	Kind MismatchKind
	// Subject names what was compared, e.g. a case name or a command.
	Subject string

	Expected string
	Actual   string

	// Line is the 1-based line for KindLine.
	Line int
	// ExpectedLines and ActualLines are set for KindLine and KindLineCount.
	ExpectedLines int
	ActualLines   int

	// WantCode and GotCode are set for KindExitCode.
	WantCode int
	GotCode  int

	// ExpectedText and ActualText are the whole transcripts behind a line
	// comparison. Callers attach them with WithTexts.
	ExpectedText string
	ActualText   string
}

func (e *MismatchError) Error() string {
	switch e.Kind {
	case KindExitCode:
		return fmt.Sprintf("wrong exit code in %s: expected %d, got %d", e.Subject, e.WantCode, e.GotCode)
	case KindLine:
		return fmt.Sprintf("output mismatch in %s on line %d: expected %q, got %q", e.Subject, e.Line, e.Expected, e.Actual)
	case KindLineCount:
		return fmt.Sprintf("different line count in %s: expected %d lines, got %d", e.Subject, e.ExpectedLines, e.ActualLines)
	default:
		return fmt.Sprintf("output mismatch in %s", e.Subject)
	}
}

func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

// WithTexts records the full transcripts of a line comparison and returns e.
func (e *MismatchError) WithTexts(expected, actual string) *MismatchError {
	e.ExpectedText = expected
	e.ActualText = actual
	return e
}

// Texts returns the full expected and actual outputs behind the mismatch.
func (e *MismatchError) Texts() (expected, actual string) {
	if e.Kind == KindOutput {
		return e.Expected, e.Actual
	}
	return e.ExpectedText, e.ActualText
}

// HasTexts reports whether Texts holds full outputs worth materialising as
// diagnostic artifacts.
func (e *MismatchError) HasTexts() bool {
	if e.Kind == KindOutput {
		return true
	}
	return e.ExpectedText != "" || e.ActualText != ""
}

// AsMismatch unwraps err to a *MismatchError.
func AsMismatch(err error) (*MismatchError, bool) {
	var me *MismatchError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}
