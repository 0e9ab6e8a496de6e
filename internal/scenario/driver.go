package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/logging"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

// Observer receives progress events. Calls happen on the driver goroutine.
type Observer interface {
	SectionSkipped(s testdef.Skipped)
	ScenarioStarted(id, title string)
	ScenarioPassed(o verify.Outcome)
	ScenarioFailed(o verify.Outcome, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) SectionSkipped(testdef.Skipped)       {}
func (NopObserver) ScenarioStarted(string, string)       {}
func (NopObserver) ScenarioPassed(verify.Outcome)        {}
func (NopObserver) ScenarioFailed(verify.Outcome, error) {}

// Summary is the result of a driver run.
type Summary struct {
	Features testdef.Features  `json:"features"`
	Cases    int               `json:"cases"`
	Skipped  []testdef.Skipped `json:"skipped,omitempty"`
	Outcomes []verify.Outcome  `json:"outcomes"`
	// Score is nil unless every scenario passed.
	Score    *verify.Score `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Passed reports whether every scenario that ran passed.
func (s *Summary) Passed() bool {
	if len(s.Outcomes) == 0 {
		return false
	}
	for _, o := range s.Outcomes {
		if !o.Passed {
			return false
		}
	}
	return s.Score != nil
}

// Driver sequences scenarios against one environment.
type Driver struct {
	env       *Env
	sections  []testdef.Section
	scenarios []Scenario
	observer  Observer
	// KeepScratch leaves the scratch directory behind after a passing run.
	KeepScratch bool
}

// NewDriver prepares a run over sections. A nil scenarios slice selects the
// full battery filtered by env.Options.Only.
func NewDriver(env *Env, sections []testdef.Section, scenarios []Scenario, observer Observer) (*Driver, error) {
	if env == nil || env.Spawner == nil {
		return nil, errors.New("scenario: environment has no spawner")
	}
	if env.Scratch == nil {
		return nil, errors.New("scenario: environment has no scratch directory")
	}
	env.Logger = logging.OrNop(env.Logger)
	if observer == nil {
		observer = NopObserver{}
	}
	if scenarios == nil {
		var err error
		scenarios, err = Select(Registry(env), env.Options.Only)
		if err != nil {
			return nil, err
		}
	}
	return &Driver{env: env, sections: sections, scenarios: scenarios, observer: observer}, nil
}

// Planned returns the IDs of the scenarios Run will attempt, in order.
func (d *Driver) Planned() []string {
	ids := make([]string, len(d.scenarios))
	for i, sc := range d.scenarios {
		ids[i] = sc.ID()
	}
	return ids
}

// Run filters sections by the enabled features and runs each scenario in
// order. The first failure stops the run and is returned alongside the
// partial summary.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	env := d.env

	included, skipped := testdef.Filter(d.sections, env.Features)
	for _, s := range skipped {
		env.Logger.Debug("section skipped", "section", s.Section.Name, "reason", s.Reason)
		d.observer.SectionSkipped(s)
	}
	env.Sections = included

	sum := &Summary{
		Features: env.Features,
		Cases:    testdef.CountCases(included),
		Skipped:  skipped,
	}
	defer func() { sum.Duration = time.Since(start) }()

	if err := env.Scratch.Recreate(); err != nil {
		return sum, fmt.Errorf("preparing scratch directory: %w", err)
	}
	dirty := false

	for _, sc := range d.scenarios {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if sc.Isolated() && dirty {
			if err := env.Scratch.Recreate(); err != nil {
				return sum, fmt.Errorf("recreating scratch directory: %w", err)
			}
		}
		dirty = true

		d.observer.ScenarioStarted(sc.ID(), sc.Title())
		env.Logger.Debug("scenario started", "scenario", sc.ID())

		began := time.Now()
		checks, err := sc.Run(ctx, env)
		out := verify.Outcome{
			Scenario: sc.ID(),
			Passed:   err == nil,
			Checks:   checks,
			Duration: time.Since(began),
		}
		if err != nil {
			out.Fail(err)
			d.diagnose(&out, err)
			sum.Outcomes = append(sum.Outcomes, out)
			env.Logger.Debug("scenario failed", "scenario", sc.ID(), "error", err)
			d.observer.ScenarioFailed(out, err)
			return sum, err
		}
		sum.Outcomes = append(sum.Outcomes, out)
		env.Logger.Debug("scenario passed", "scenario", sc.ID(), "checks", checks, "duration", out.Duration)
		d.observer.ScenarioPassed(out)
	}

	sum.Score = d.score()
	if !d.KeepScratch {
		if err := env.Scratch.Remove(); err != nil {
			env.Logger.Warn("removing scratch directory", "path", env.Scratch.Path(), "error", err)
		}
	}
	return sum, nil
}

func (d *Driver) score() *verify.Score {
	opts := d.env.Options
	score := &verify.Score{}
	score.Add("all tests passed", opts.BasePoints)
	if d.env.Features.Logic {
		score.Add("bonus logical operators", opts.BonusPoints)
	}
	if d.env.Features.Background {
		score.Add("bonus background", opts.BonusPoints)
	}
	return score
}

// diagnose logs a unified diff of a failed full-text comparison. With
// diagnostics on it also writes artifacts and renders a side-by-side diff.
func (d *Driver) diagnose(out *verify.Outcome, err error) {
	me, ok := verify.AsMismatch(err)
	if !ok || !me.HasTexts() {
		return
	}
	expected, actual := me.Texts()
	d.env.Logger.Debug("output mismatch", "scenario", out.Scenario, "diff", verify.UnifiedDiff(expected, actual))
	opts := d.env.Options
	if !opts.Diagnostics {
		return
	}
	out.Diff = verify.SideBySide(expected, actual, opts.DiffWidth)
	exp, act, werr := d.env.Artifacts.Write(expected, actual)
	if werr != nil {
		d.env.Logger.Warn("writing diff artifacts", "error", werr)
		return
	}
	out.ArtifactPaths = []string{exp, act}
}
