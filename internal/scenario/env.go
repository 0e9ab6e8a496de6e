// Package scenario runs the fixed battery of conformance scenarios against
// a subject shell.
//
// Scenarios run one after another and each owns at most one subject session
// at a time. The first failing scenario aborts the run; there are no retries.
package scenario

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

// Options tunes timeouts, scale test sizes, and scoring.
type Options struct {
	// CaseTimeout bounds each test case and the single-shell run.
	CaseTimeout time.Duration
	// ExitTimeout bounds the exit command and exit code checks.
	ExitTimeout time.Duration
	// ScaleTimeout bounds each scale test.
	ScaleTimeout time.Duration

	// LongCommandLength is the length of the single echo argument.
	LongCommandLength int
	// ManyArgsCount is the number of echo arguments.
	ManyArgsCount int
	// LongPipeLength is the number of "| cat" stages.
	LongPipeLength int

	// BasePoints and BonusPoints feed the score of a passing run.
	BasePoints  int
	BonusPoints int

	// Diagnostics writes diff artifacts and renders a side-by-side diff for
	// failed output comparisons.
	Diagnostics bool
	// DiffWidth is the side-by-side diff width.
	DiffWidth int

	// Only restricts the run to these scenario IDs. Empty runs all.
	Only []string
}

// DefaultOptions returns the standard timeouts and scale sizes.
func DefaultOptions() Options {
	return Options{
		CaseTimeout:       3 * time.Second,
		ExitTimeout:       time.Second,
		ScaleTimeout:      5 * time.Second,
		LongCommandLength: 100 * 1024,
		ManyArgsCount:     100 * 1000,
		LongPipeLength:    1000,
		BasePoints:        verify.BasePoints,
		BonusPoints:       verify.BonusPoints,
		DiffWidth:         verify.DefaultDiffWidth,
	}
}

// Spawner starts subject sessions. *harness.Launcher implements it.
type Spawner interface {
	Spawn(ctx context.Context) (*harness.Session, error)
}

// Env is everything a scenario needs. The driver fills Sections with the
// feature-filtered sections before the first scenario runs.
type Env struct {
	Spawner  Spawner
	Scratch  *harness.ScratchDir
	Features testdef.Features
	Sections []testdef.Section
	// Etalon holds the golden transcript lines; nil disables the etalon
	// scenario.
	Etalon    []string
	Options   Options
	Artifacts verify.Artifacts
	Prober    Prober
	Logger    *log.Logger
}

// withSession spawns a session for the duration of fn and always terminates
// it, whatever fn returns.
func (e *Env) withSession(ctx context.Context, fn func(*harness.Session) error) (err error) {
	s, err := e.Spawner.Spawn(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if termErr := s.Terminate(); termErr != nil && err == nil {
			err = termErr
		}
	}()
	return fn(s)
}
