package harness

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// drainGrace bounds how long Terminate waits for the output pipe to reach
// EOF after the process group was killed.
const drainGrace = 2 * time.Second

// Session is one running subject process. Its methods are not meant for
// concurrent use by multiple scenarios; a scenario owns its session.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	outR   *os.File
	logger *log.Logger

	mu  sync.Mutex
	out bytes.Buffer

	exited  chan struct{} // closed after cmd.Wait returns
	drained chan struct{} // closed after the output pipe reaches EOF
	status  int
	waitErr error

	closeInput sync.Once
	terminate  sync.Once
}

func newSession(cmd *exec.Cmd, stdin io.WriteCloser, outR *os.File, logger *log.Logger) *Session {
	s := &Session{
		cmd:     cmd,
		stdin:   stdin,
		outR:    outR,
		logger:  logger,
		exited:  make(chan struct{}),
		drained: make(chan struct{}),
	}
	go s.readOutput()
	go s.reap()
	return s
}

// Pid returns the subject's process id.
func (s *Session) Pid() int {
	return s.cmd.Process.Pid
}

func (s *Session) readOutput() {
	defer close(s.drained)
	buf := make([]byte, 32*1024)
	for {
		n, err := s.outR.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.out.Write(buf[:n])
			s.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) reap() {
	err := s.cmd.Wait()
	status, ok := exitStatus(err)
	s.status = status
	if !ok {
		s.waitErr = err
	}
	close(s.exited)
}

// Write sends p to the subject's stdin. A subject that already exited or
// closed its stdin is not an error: the exit code is what gets verified.
func (s *Session) Write(p []byte) error {
	if _, err := s.stdin.Write(p); err != nil && !isClosedPipe(err) {
		return err
	}
	return nil
}

// CloseInput closes stdin so the subject sees end-of-input. Idempotent.
func (s *Session) CloseInput() error {
	var err error
	s.closeInput.Do(func() {
		err = s.stdin.Close()
		if isClosedPipe(err) {
			err = nil
		}
	})
	return err
}

// Wait blocks until the subject exits and returns its exit status. It does
// not wait for the output pipe, so background children still holding it do
// not delay the result. On timeout the session is killed and a *TimeoutError
// returned.
func (s *Session) Wait(ctx context.Context, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-s.exited:
		return s.status, s.waitErr
	case <-ctx.Done():
		return -1, s.deadline(ctx, "wait", timeout)
	}
}

// SendAndCollect writes input, closes stdin, and waits until the subject has
// exited and its output pipe is closed. The writer runs concurrently with
// the waiter so a subject that prints while reading cannot deadlock on a full
// pipe.
func (s *Session) SendAndCollect(ctx context.Context, input []byte, timeout time.Duration) ([]byte, int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.Write(input); err != nil {
			return err
		}
		return s.CloseInput()
	})
	g.Go(func() error {
		for _, ch := range []chan struct{}{s.exited, s.drained} {
			select {
			case <-ch:
			case <-gctx.Done():
				if ctx.Err() == nil {
					// The writer failed; let its error surface.
					return nil
				}
				return s.deadline(ctx, "send and collect", timeout)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return s.Output(), -1, err
	}
	return s.Output(), s.status, s.waitErr
}

// deadline kills the session so that a blocked writer is released, and
// converts the context state into the matching error.
func (s *Session) deadline(ctx context.Context, op string, timeout time.Duration) error {
	s.kill()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		s.logger.Debug("subject timed out", "op", op, "timeout", timeout)
		return &TimeoutError{Op: op, Timeout: timeout, Output: s.Output()}
	}
	return ctx.Err()
}

func (s *Session) kill() {
	if err := killGroup(s.cmd); err != nil {
		s.logger.Debug("killing subject", "error", err)
	}
	_ = s.CloseInput()
}

// Output returns a copy of everything the subject printed so far.
func (s *Session) Output() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return bytes.Clone(s.out.Bytes())
}

// Exited reports whether the subject process has already exited.
func (s *Session) Exited() bool {
	select {
	case <-s.exited:
		return true
	default:
		return false
	}
}

// Terminate force-kills the subject and everything in its process group and
// releases the pipes. It is idempotent and safe after the subject exited.
func (s *Session) Terminate() error {
	s.terminate.Do(func() {
		s.kill()
		<-s.exited

		select {
		case <-s.drained:
		case <-time.After(drainGrace):
			// A process outside the group still holds the pipe.
		}
		_ = s.outR.Close()
		s.logger.Debug("terminated subject", "pid", s.Pid(), "status", s.status)
	})
	return nil
}

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe)
}
