package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
)

// Scenario is one verification strategy.
type Scenario interface {
	// ID is the stable identifier used by --scenario and in JSON output.
	ID() string
	// Title is the progress line shown while the scenario runs.
	Title() string
	// Isolated scenarios get a freshly recreated scratch directory.
	Isolated() bool
	// Run executes the scenario and returns the number of checks performed.
	Run(ctx context.Context, env *Env) (int, error)
}

// Diagnostic hints attached to timeouts.
const (
	HintEOF  = "Probably you forgot to process EOF or is stuck in wait/waitpid()"
	HintExit = `Probably you forgot to handle "exit" manually`
)

// Failure is a scenario failure with enough context to act on it.
type Failure struct {
	Scenario string
	// Case and Location identify the test case, when there is one.
	Case     string
	Location string
	// Detail describes the input, e.g. a command list or a scale test.
	Detail string
	// Hint is a likely root cause, printed on its own line.
	Hint string
	Err  error
}

func (f *Failure) Error() string {
	var sb strings.Builder
	sb.WriteString(f.Scenario)
	if f.Case != "" {
		fmt.Fprintf(&sb, ": test %q on %s", f.Case, f.Location)
	}
	if f.Detail != "" {
		fmt.Fprintf(&sb, ": %s", f.Detail)
	}
	fmt.Fprintf(&sb, ": %v", f.Err)
	return sb.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// AsFailure unwraps err to a *Failure.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

func caseFailure(scenario string, c testdef.Case, err error) *Failure {
	f := &Failure{Scenario: scenario, Case: c.Name, Location: c.Location(), Err: err}
	if isTimeout(err) {
		f.Hint = HintEOF
	}
	return f
}

func isTimeout(err error) bool {
	return errors.Is(err, harness.ErrTimeout)
}

// Registry is the ordered battery. Order is part of the contract: later
// scenarios assume the earlier ones passed.
func Registry(env *Env) []Scenario {
	list := []Scenario{
		oneByOne{},
		oneShell{},
	}
	if env.Etalon != nil {
		list = append(list, etalon{})
	}
	list = append(list,
		exitCommand{},
		exitCodes{},
		longCommand(env.Options.LongCommandLength),
		manyArgs(env.Options.ManyArgsCount),
		longPipe(env.Options.LongPipeLength),
	)
	return list
}

// IDs lists every scenario ID in battery order.
func IDs() []string {
	return []string{
		idOneByOne, idOneShell, idEtalon, idExitCommand,
		idExitCodes, idLongCommand, idManyArgs, idLongPipe,
	}
}

// Select keeps the scenarios whose ID is in only, preserving battery order.
// An empty only keeps everything. Unknown IDs are an error.
func Select(all []Scenario, only []string) ([]Scenario, error) {
	if len(only) == 0 {
		return all, nil
	}
	known := make(map[string]bool)
	for _, id := range IDs() {
		known[id] = true
	}
	want := make(map[string]bool, len(only))
	for _, id := range only {
		if !known[id] {
			return nil, fmt.Errorf("unknown scenario %q (known: %s)", id, strings.Join(IDs(), ", "))
		}
		want[id] = true
	}
	var out []Scenario
	for _, s := range all {
		if want[s.ID()] {
			out = append(out, s)
		}
	}
	return out, nil
}
