// Package harness runs the shell under test as a child process.
//
// A Session is one live subject process: stdin is a pipe, stdout and stderr
// share a second pipe, and the working directory is the run's scratch
// directory. Sessions must always be released with Terminate, usually via
// defer, so a failing scenario never leaks a child process into the next one.
package harness

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/logging"
)

// Launcher starts sessions of one subject executable.
type Launcher struct {
	// Executable is the subject path. It is resolved to an absolute path by
	// NewLauncher so that Dir can differ from the caller's working directory.
	Executable string
	// Dir is the working directory of every session.
	Dir string
	// Env is the subject environment. Nil inherits the runner's environment.
	Env []string

	logger *log.Logger
}

// NewLauncher returns a Launcher for executable running in dir. logger may
// be nil.
func NewLauncher(executable, dir string, logger *log.Logger) (*Launcher, error) {
	abs, err := filepath.Abs(executable)
	if err != nil {
		return nil, &LaunchError{Path: executable, Err: err}
	}
	return &Launcher{
		Executable: abs,
		Dir:        dir,
		logger:     logging.OrNop(logger),
	}, nil
}

// Check verifies that the executable exists and can be run.
func (l *Launcher) Check() error {
	info, err := os.Stat(l.Executable)
	if err != nil {
		if os.IsNotExist(err) {
			return &LaunchError{Path: l.Executable, Err: ErrNotFound}
		}
		return &LaunchError{Path: l.Executable, Err: err}
	}
	if !info.Mode().IsRegular() || !executableMode(uint32(info.Mode().Perm())) {
		return &LaunchError{Path: l.Executable, Err: ErrNotExecutable}
	}
	return nil
}

// checkDir rejects a missing or non-directory Dir.
func (l *Launcher) checkDir() error {
	if l.Dir == "" {
		return nil
	}
	info, err := os.Stat(l.Dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorkDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrWorkDir, l.Dir)
	}
	return nil
}

// Spawn starts a new session. The subject gets no arguments and is not
// wrapped in a shell.
func (l *Launcher) Spawn(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := l.Check(); err != nil {
		return nil, err
	}
	if err := l.checkDir(); err != nil {
		return nil, &LaunchError{Path: l.Executable, Err: err}
	}

	cmd := exec.Command(l.Executable)
	cmd.Dir = l.Dir
	cmd.Env = l.Env
	setProcGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdin pipe: %w", err)
	}

	// stdout and stderr share one *os.File so the child writes straight into
	// the pipe and cmd.Wait returns on process exit, not on pipe EOF.
	outR, outW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("creating output pipe: %w", err)
	}
	cmd.Stdout = outW
	cmd.Stderr = outW

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = outR.Close()
		_ = outW.Close()
		return nil, &LaunchError{Path: l.Executable, Err: err}
	}
	// The child holds its own copy of the write end.
	_ = outW.Close()

	s := newSession(cmd, stdin, outR, l.logger)
	l.logger.Debug("spawned subject", "pid", s.Pid(), "dir", l.Dir)
	return s, nil
}
