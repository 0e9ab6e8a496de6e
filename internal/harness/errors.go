package harness

import (
	"errors"
	"fmt"
	"time"
)

// Causes wrapped by LaunchError.
var (
	ErrNotFound      = errors.New("executable not found")
	ErrNotExecutable = errors.New("file is not executable")
	ErrWorkDir       = errors.New("working directory unavailable")
)

// LaunchError means the subject could not be started at all.
type LaunchError struct {
	Path string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launching %s: %v", e.Path, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// ErrTimeout is matched by errors.Is on every *TimeoutError.
var ErrTimeout = errors.New("subject did not finish in time")

// TimeoutError means the subject did not exit (or close its output) within
// the allotted time. The session has already been killed when it is returned.
type TimeoutError struct {
	// Op names the interaction, e.g. "send and collect" or "wait".
	Op      string
	Timeout time.Duration
	// Output is whatever the subject printed before the deadline.
	Output []byte
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no result after %s", e.Op, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}
