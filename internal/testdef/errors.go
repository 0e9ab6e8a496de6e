package testdef

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by ParseError.
var (
	ErrEmptySectionName   = errors.New("section name is empty")
	ErrEmptyCaseName      = errors.New("case name is empty")
	ErrCaseOutsideSection = errors.New("test case outside of a section")
	ErrUnknownSyntax      = errors.New("unknown test syntax")
	ErrUnfinishedCase     = errors.New("unfinished test case in the end of file")
	ErrNoTests            = errors.New("no tests found")
	ErrFileTooLarge       = errors.New("definition file too large")
)

// ParseError is a malformed definition file. Line is 1-based; it is 0 for
// whole-file conditions such as ErrNoTests.
type ParseError struct {
	File string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	case e.File != "":
		return fmt.Sprintf("%s: %v", e.File, e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
