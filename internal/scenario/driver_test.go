package scenario

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

func TestNewDriver_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewDriver(nil, nil, nil, nil)
	require.Error(t, err)

	_, err = NewDriver(&Env{}, nil, nil, nil)
	require.Error(t, err)
}

func TestNewDriver_UnknownScenario(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	env.Options.Only = []string{"bogus"}
	_, err := NewDriver(env, nil, nil, nil)
	require.Error(t, err)
}

func TestDriver_PlannedFollowsOnly(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	env.Options.Only = []string{"exit-codes", "one-by-one"}
	d, err := NewDriver(env, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"one-by-one", "exit-codes"}, d.Planned())
}

func TestDriver_FullBatteryPasses(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	rec := &recorder{}
	d, err := NewDriver(env, parse(t, definition), nil, rec)
	require.NoError(t, err)

	sum, err := d.Run(context.Background())
	require.NoError(t, err)
	require.True(t, sum.Passed())

	assert.Equal(t, 2, sum.Cases)
	require.Len(t, rec.skipped, 2)
	assert.Equal(t, "logic", rec.skipped[0].Reason)
	assert.Equal(t, "background", rec.skipped[1].Reason)

	assert.Len(t, rec.passed, 7)
	assert.Empty(t, rec.failed)
	assert.Equal(t, "one-by-one", rec.started[0])

	require.NotNil(t, sum.Score)
	assert.Equal(t, verify.BasePoints, sum.Score.Total())

	_, statErr := os.Stat(env.Scratch.Path())
	assert.True(t, os.IsNotExist(statErr), "scratch dir removed after a passing run")
}

func TestDriver_BonusScoring(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	env.Features = testdef.Features{Logic: true, Background: true}
	env.Options.Only = []string{"one-by-one"}
	d, err := NewDriver(env, parse(t, definition), nil, nil)
	require.NoError(t, err)
	d.KeepScratch = true

	sum, err := d.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Cases)
	assert.Empty(t, sum.Skipped)
	assert.Equal(t, verify.BasePoints+2*verify.BonusPoints, sum.Score.Total())
	assert.Len(t, sum.Score.Entries(), 3)

	assert.DirExists(t, env.Scratch.Path())
}

func TestDriver_FirstFailureStops(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	env.Options.Diagnostics = true
	rec := &recorder{}
	broken := strings.Replace(definition, "hello\n----# }", "goodbye\n----# }", 1)
	d, err := NewDriver(env, parse(t, broken), nil, rec)
	require.NoError(t, err)

	sum, err := d.Run(context.Background())
	require.Error(t, err)
	assert.False(t, sum.Passed())
	assert.Nil(t, sum.Score)

	require.Len(t, sum.Outcomes, 1)
	out := sum.Outcomes[0]
	assert.Equal(t, "one-by-one", out.Scenario)
	assert.False(t, out.Passed)
	assert.Equal(t, "goodbye\n", out.Expected)
	assert.Equal(t, "hello\n", out.Actual)
	assert.Contains(t, out.Diff, "goodbye")
	require.Len(t, out.ArtifactPaths, 2)

	data, readErr := os.ReadFile(filepath.Join(env.Artifacts.Dir, verify.ActualFile))
	require.NoError(t, readErr)
	assert.Equal(t, "hello\n", string(data))

	assert.Equal(t, []string{"one-by-one"}, rec.started)
	require.Len(t, rec.failed, 1)
	assert.Equal(t, err, rec.errs[0])
}

func TestDriver_EtalonMismatchWritesArtifacts(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	env.Options.Diagnostics = true
	env.Options.Only = []string{"etalon"}
	env.Etalon = []string{"hello", "WRONG"}
	d, err := NewDriver(env, parse(t, definition), nil, nil)
	require.NoError(t, err)

	sum, err := d.Run(context.Background())
	require.Error(t, err)
	require.Len(t, sum.Outcomes, 1)
	out := sum.Outcomes[0]
	assert.Equal(t, "etalon", out.Scenario)
	assert.False(t, out.Passed)
	assert.Contains(t, out.Diff, "WRONG")
	require.Len(t, out.ArtifactPaths, 2)

	data, readErr := os.ReadFile(filepath.Join(env.Artifacts.Dir, verify.ExpectedFile))
	require.NoError(t, readErr)
	assert.Equal(t, "hello\nWRONG\n", string(data))

	data, readErr = os.ReadFile(filepath.Join(env.Artifacts.Dir, verify.ActualFile))
	require.NoError(t, readErr)
	assert.True(t, strings.HasPrefix(string(data), "hello\n"))
}

func TestDriver_NoDiagnosticsByDefault(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	broken := strings.Replace(definition, "hello\n----# }", "goodbye\n----# }", 1)
	d, err := NewDriver(env, parse(t, broken), nil, nil)
	require.NoError(t, err)

	sum, err := d.Run(context.Background())
	require.Error(t, err)
	assert.Empty(t, sum.Outcomes[0].Diff)
	assert.NoFileExists(t, filepath.Join(env.Artifacts.Dir, verify.ExpectedFile))
}

// touchScenario leaves a file in the scratch dir; checkScenario fails if the
// file is there.
type touchScenario struct{}

func (touchScenario) ID() string     { return "touch" }
func (touchScenario) Title() string  { return "touch" }
func (touchScenario) Isolated() bool { return false }
func (touchScenario) Run(_ context.Context, env *Env) (int, error) {
	return 1, os.WriteFile(filepath.Join(env.Scratch.Path(), "leftover"), nil, 0o644)
}

type checkScenario struct{ isolated bool }

func (checkScenario) ID() string       { return "check" }
func (checkScenario) Title() string    { return "check" }
func (c checkScenario) Isolated() bool { return c.isolated }
func (checkScenario) Run(_ context.Context, env *Env) (int, error) {
	_, err := os.Stat(filepath.Join(env.Scratch.Path(), "leftover"))
	if err == nil {
		return 1, os.ErrExist
	}
	return 1, nil
}

func TestDriver_IsolatedScenariosGetFreshDir(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	d, err := NewDriver(env, nil, []Scenario{touchScenario{}, checkScenario{isolated: true}}, nil)
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	require.NoError(t, err)

	env = shEnv(t)
	d, err = NewDriver(env, nil, []Scenario{touchScenario{}, checkScenario{isolated: false}}, nil)
	require.NoError(t, err)
	_, err = d.Run(context.Background())
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestDriver_Cancelled(t *testing.T) {
	t.Parallel()

	env := shEnv(t)
	d, err := NewDriver(env, parse(t, definition), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sum.Outcomes)
}
