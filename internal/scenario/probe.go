package scenario

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// Prober computes expected statuses from the host environment.
type Prober interface {
	// FailureStatus runs command on the host and returns its nonzero exit
	// status.
	FailureStatus(ctx context.Context, command string) (int, error)
}

// EnvironmentProbeError means the host did not behave as the checker
// assumes. It is a problem with the machine running the checks, not with the
// subject.
type EnvironmentProbeError struct {
	Command string
	Status  int
	Err     error
}

func (e *EnvironmentProbeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("environment probe %q failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("environment probe %q: expected a nonzero status, got %d", e.Command, e.Status)
}

func (e *EnvironmentProbeError) Unwrap() error {
	return e.Err
}

// HostProber runs probe commands through the host shell with stderr
// discarded.
type HostProber struct {
	// Shell defaults to /bin/sh.
	Shell string
	// Dir is the working directory; empty means the current one.
	Dir string
}

func (p HostProber) FailureStatus(ctx context.Context, command string) (int, error) {
	if runtime.GOOS == "windows" {
		return 0, &EnvironmentProbeError{Command: command, Err: errors.New("no POSIX shell on windows")}
	}
	shell := p.Shell
	if shell == "" {
		shell = "/bin/sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", command+" 2>/dev/null")
	cmd.Dir = p.Dir

	err := cmd.Run()
	if err == nil {
		return 0, &EnvironmentProbeError{Command: command, Status: 0}
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 0, &EnvironmentProbeError{Command: command, Err: err}
	}
	status := exitErr.ExitCode()
	if status <= 0 {
		return 0, &EnvironmentProbeError{Command: command, Status: status, Err: exitErr}
	}
	return status, nil
}
