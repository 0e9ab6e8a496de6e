package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

const (
	idExitCommand = "exit-command"
	idExitCodes   = "exit-codes"
)

// ProbeCommand is run on the host shell to learn the real status of a
// failing lookup. The subject must report the same status.
const ProbeCommand = "ls /404"

// exitCheck is a list of input lines and the status the subject must exit
// with once it has processed them.
type exitCheck struct {
	lines []string
	want  int
}

func (c exitCheck) subject() string {
	quoted := make([]string, len(c.lines))
	for i, l := range c.lines {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// exitCommandChecks feeds the exit builtin with whitespace variants.
var exitCommandChecks = []exitCheck{
	{lines: []string{"exit"}, want: 0},
	{lines: []string{"  exit "}, want: 0},
	{lines: []string{"  exit   10  "}, want: 10},
}

// exitCommand writes a single exit line without closing stdin. The subject
// has to terminate on the builtin alone.
type exitCommand struct{}

func (exitCommand) ID() string     { return idExitCommand }
func (exitCommand) Title() string  { return "Test 'exit' command" }
func (exitCommand) Isolated() bool { return false }

func (s exitCommand) Run(ctx context.Context, env *Env) (int, error) {
	checks := 0
	for _, check := range exitCommandChecks {
		if err := ctx.Err(); err != nil {
			return checks, err
		}
		err := env.withSession(ctx, func(sess *harness.Session) error {
			for _, line := range check.lines {
				if err := sess.Write([]byte(line + "\n")); err != nil {
					return err
				}
			}
			code, err := sess.Wait(ctx, env.Options.ExitTimeout)
			if err != nil {
				return err
			}
			return verify.ExitCode(check.subject(), check.want, code)
		})
		checks++
		if err != nil {
			return checks, exitFailure(s.ID(), check, err)
		}
	}
	return checks, nil
}

// exitCodes checks that the status of the last command is propagated as the
// exit status of the shell once stdin is closed.
type exitCodes struct{}

func (exitCodes) ID() string     { return idExitCodes }
func (exitCodes) Title() string  { return "Test exit code after or before certain commands" }
func (exitCodes) Isolated() bool { return false }

func (s exitCodes) Run(ctx context.Context, env *Env) (int, error) {
	checks, err := exitCodeChecks(ctx, env)
	if err != nil {
		return 0, err
	}
	for i, check := range checks {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		err := env.withSession(ctx, func(sess *harness.Session) error {
			for _, line := range check.lines {
				if err := sess.Write([]byte(line + "\n")); err != nil {
					return err
				}
			}
			if err := sess.CloseInput(); err != nil {
				return err
			}
			code, err := sess.Wait(ctx, env.Options.ExitTimeout)
			if err != nil {
				return err
			}
			return verify.ExitCode(check.subject(), check.want, code)
		})
		if err != nil {
			return i + 1, exitFailure(s.ID(), check, err)
		}
	}
	return len(checks), nil
}

// exitCodeChecks builds the check list. The status of the failing lookup is
// probed on the host so the check stays portable.
func exitCodeChecks(ctx context.Context, env *Env) ([]exitCheck, error) {
	checks := []exitCheck{
		{lines: []string{"ls /"}, want: 0},
		{lines: []string{"ls / | exit 123"}, want: 123},
		{lines: []string{"ls /404", "echo test"}, want: 0},
	}

	prober := env.Prober
	if prober == nil {
		prober = HostProber{}
	}
	code, err := prober.FailureStatus(ctx, ProbeCommand)
	if err != nil {
		return nil, err
	}
	checks = append(checks, exitCheck{lines: []string{ProbeCommand}, want: code})

	if env.Features.Logic {
		checks = append(checks,
			exitCheck{lines: []string{"exit 123 && echo test"}, want: 123},
			exitCheck{lines: []string{"exit 123 || echo test"}, want: 123},
		)
	}
	return checks, nil
}

func exitFailure(id string, check exitCheck, err error) *Failure {
	f := &Failure{Scenario: id, Detail: "test " + check.subject(), Err: err}
	if isTimeout(err) {
		f.Hint = HintExit
	}
	return f
}
