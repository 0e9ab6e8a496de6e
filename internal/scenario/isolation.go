package scenario

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

const (
	idOneByOne = "one-by-one"
	idOneShell = "one-shell"
	idEtalon   = "etalon"
)

// oneByOne runs every included case in its own fresh session and compares
// the combined output exactly. Exit statuses are not checked here.
type oneByOne struct{}

func (oneByOne) ID() string     { return idOneByOne }
func (oneByOne) Title() string  { return "Running tests one by one" }
func (oneByOne) Isolated() bool { return true }

func (s oneByOne) Run(ctx context.Context, env *Env) (int, error) {
	checks := 0
	for _, sec := range env.Sections {
		for _, c := range sec.Cases {
			if err := ctx.Err(); err != nil {
				return checks, err
			}
			env.Logger.Debug("running case", "case", c.Name, "at", c.Location())
			err := env.withSession(ctx, func(sess *harness.Session) error {
				out, _, err := sess.SendAndCollect(ctx, []byte(c.Body), env.Options.CaseTimeout)
				if err != nil {
					return err
				}
				return verify.Text(c.Name, c.Output, string(out))
			})
			checks++
			if err != nil {
				return checks, caseFailure(s.ID(), c, err)
			}
		}
	}
	return checks, nil
}

// oneShell feeds the concatenation of every included case to a single
// session. State such as cd and variables carries over between cases.
type oneShell struct{}

func (oneShell) ID() string     { return idOneShell }
func (oneShell) Title() string  { return "Running tests in one shell" }
func (oneShell) Isolated() bool { return true }

func (s oneShell) Run(ctx context.Context, env *Env) (int, error) {
	body, expected := testdef.Concat(env.Sections)
	err := env.withSession(ctx, func(sess *harness.Session) error {
		out, code, err := sess.SendAndCollect(ctx, []byte(body), env.Options.CaseTimeout)
		if err != nil {
			return err
		}
		if err := verify.ExitCode("one shell", 0, code); err != nil {
			return err
		}
		return verify.Text("one shell", expected, string(out))
	})
	if err != nil {
		return 1, wrapShellFailure(s.ID(), err)
	}
	return 1, nil
}

// etalon compares the single-shell transcript against the golden file line
// by line and stops at the first difference.
type etalon struct{}

func (etalon) ID() string     { return idEtalon }
func (etalon) Title() string  { return "Comparing with the etalon transcript" }
func (etalon) Isolated() bool { return true }

func (s etalon) Run(ctx context.Context, env *Env) (int, error) {
	body, _ := testdef.Concat(env.Sections)
	err := env.withSession(ctx, func(sess *harness.Session) error {
		out, _, err := sess.SendAndCollect(ctx, []byte(body), env.Options.CaseTimeout)
		if err != nil {
			return err
		}
		err = verify.Lines("etalon", env.Etalon, verify.SplitLines(string(out)))
		if me, ok := verify.AsMismatch(err); ok {
			me.WithTexts(joinLines(env.Etalon), string(out))
		}
		return err
	})
	if err != nil {
		return 1, wrapShellFailure(s.ID(), err)
	}
	return 1, nil
}

func wrapShellFailure(id string, err error) *Failure {
	f := &Failure{Scenario: id, Detail: "all tests in one shell", Err: err}
	if isTimeout(err) {
		f.Hint = HintEOF
	}
	return f
}

// joinLines restores a transcript from lines, one "\n" per line.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// ReadEtalon loads a golden transcript as lines.
func ReadEtalon(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading etalon: %w", err)
	}
	return verify.SplitLines(string(data)), nil
}
