//go:build windows

package harness

import (
	"errors"
	"os/exec"
)

// setProcGroup is a no-op on Windows, which has no Unix process groups.
func setProcGroup(cmd *exec.Cmd) {}

// killGroup kills the subject process itself.
func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

func exitStatus(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, false
	}
	return exitErr.ExitCode(), true
}

// Windows has no execute bit; any regular file is accepted.
func executableMode(uint32) bool {
	return true
}
