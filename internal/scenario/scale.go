package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

const (
	idLongCommand = "long-command"
	idManyArgs    = "many-args"
	idLongPipe    = "long-pipe"
)

// scale sends one oversized command line and expects it to succeed. These
// catch fixed-size buffers and argument or pipeline limits in the subject.
type scale struct {
	id    string
	title string
	// what describes the command in the failure message.
	what     string
	input    string
	expected string
}

func (s scale) ID() string     { return s.id }
func (s scale) Title() string  { return s.title }
func (s scale) Isolated() bool { return false }

func (s scale) Run(ctx context.Context, env *Env) (int, error) {
	err := env.withSession(ctx, func(sess *harness.Session) error {
		out, code, err := sess.SendAndCollect(ctx, []byte(s.input), env.Options.ScaleTimeout)
		if err != nil {
			return err
		}
		if err := verify.Text(s.id, s.expected, string(out)); err != nil {
			return err
		}
		return verify.ExitCode(s.id, 0, code)
	})
	if err != nil {
		return 1, &Failure{Scenario: s.id, Detail: s.what, Err: err}
	}
	return 1, nil
}

func longCommand(n int) scale {
	arg := strings.Repeat("a", n)
	return scale{
		id:       idLongCommand,
		title:    fmt.Sprintf("Test an extra long command (%d symbols)", n),
		what:     fmt.Sprintf("`echo a....` with `a` repeated %d times", n),
		input:    "echo " + arg + "\n",
		expected: arg + "\n",
	}
}

func manyArgs(n int) scale {
	if n < 1 {
		n = 1
	}
	args := strings.Repeat("a ", n-1) + "a\n"
	return scale{
		id:       idManyArgs,
		title:    fmt.Sprintf("Test extra many arguments (%d count)", n),
		what:     fmt.Sprintf("`echo a a a ...` with `a` repeated %d times", n),
		input:    "echo " + args,
		expected: args,
	}
}

func longPipe(n int) scale {
	return scale{
		id:       idLongPipe,
		title:    fmt.Sprintf("Test an extra long pipe (%d commands)", n),
		what:     fmt.Sprintf("`echo test | cat | cat | cat ... | cat` with `cat` repeated %d times", n),
		input:    "echo test" + strings.Repeat(" | cat", n) + "\n",
		expected: "test\n",
	}
}
