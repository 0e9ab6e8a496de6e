//go:build !windows

package harness

import (
	"errors"
	"os/exec"
	"syscall"
)

// setProcGroup starts the subject in its own process group so that killing
// the group also stops pipeline stages and background jobs it spawned.
func setProcGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killGroup sends SIGKILL to the subject's whole process group.
func killGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}

// exitStatus maps a Wait error to a status code. Death by signal is reported
// as the negated signal number.
func exitStatus(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1, false
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal()), true
	}
	return exitErr.ExitCode(), true
}

func executableMode(mode uint32) bool {
	return mode&0o111 != 0
}
