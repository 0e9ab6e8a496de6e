package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/harness"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/scenario"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func passingSummary() *scenario.Summary {
	score := &verify.Score{}
	score.Add("all tests passed", 15)
	score.Add("bonus logical operators", 5)
	return &scenario.Summary{
		Features: testdef.Features{Logic: true},
		Cases:    3,
		Skipped: []testdef.Skipped{{
			Section: testdef.Section{Name: "Jobs", Line: 40, File: "tests.txt"},
			Reason:  "background",
		}},
		Outcomes: []verify.Outcome{
			{Scenario: "one-by-one", Passed: true, Checks: 3},
			{Scenario: "one-shell", Passed: true, Checks: 1},
		},
		Score:    score,
		Duration: 1500 * time.Millisecond,
	}
}

func TestPrinter_ProgressLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Planned: 2})
	p.SectionSkipped(testdef.Skipped{Section: testdef.Section{Name: "Pipes and ops"}, Reason: "logic"})
	p.ScenarioStarted("one-by-one", "Running tests one by one")
	p.ScenarioPassed(verify.Outcome{Scenario: "one-by-one", Passed: true})
	p.ScenarioStarted("one-shell", "Running tests in one shell")
	p.ScenarioPassed(verify.Outcome{Scenario: "one-shell", Passed: true})
	p.Finish(passingSummary())

	out := buf.String()
	assert.Contains(t, out, "Skipped on logic section Pipes and ops\n")
	assert.Contains(t, out, "⏳ Running tests one by one\n✅ Passed\n")
	assert.Contains(t, out, "⏳ Running tests in one shell\n✅ Passed\n")
	assert.Contains(t, out, "2/2 scenarios")
	assert.True(t, strings.HasSuffix(out, "⏫ Points: 20\n"))
}

func TestPrinter_Quiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Quiet: true, Planned: 2})
	p.SectionSkipped(testdef.Skipped{Section: testdef.Section{Name: "x"}, Reason: "logic"})
	p.ScenarioStarted("one-by-one", "Running tests one by one")
	p.ScenarioPassed(verify.Outcome{})
	p.Finish(passingSummary())

	assert.Equal(t, "⏫ Points: 20\n", buf.String())
}

func TestPrinter_FailureWithHintAndDiff(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{DiffWidth: 23})
	err := &scenario.Failure{
		Scenario: "one-by-one",
		Case:     "echo",
		Location: "tests.txt:3",
		Hint:     scenario.HintEOF,
		Err:      &harness.TimeoutError{Op: "send and collect", Timeout: 3 * time.Second},
	}
	p.ScenarioFailed(verify.Outcome{
		Diff:          verify.SideBySide("same\nold\n", "same\nnew\n", 23),
		ArtifactPaths: []string{"out/output_expected.txt", "out/output_got.txt"},
	}, err)

	out := buf.String()
	assert.Contains(t, out, `❌ one-by-one: test "echo" on tests.txt:3:`)
	assert.Contains(t, out, scenario.HintEOF+"\n")
	assert.Contains(t, out, diffBanner)
	assert.Contains(t, out, "old"+strings.Repeat(" ", 8)+"| new")
	assert.Contains(t, out, "wrote out/output_got.txt")
	assert.NotContains(t, out, "Points")
}

func TestPrinter_FinishAfterFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{Planned: 4})
	p.ScenarioPassed(verify.Outcome{})
	p.Finish(&scenario.Summary{Outcomes: []verify.Outcome{{Passed: true}, {Passed: false}}})

	assert.Contains(t, buf.String(), "1/4 scenarios")
	assert.NotContains(t, buf.String(), "Points")
}

func TestColorDiff_PlainProfileKeepsText(t *testing.T) {
	t.Parallel()

	diff := verify.SideBySide("a\nb\n", "a\nc\n", 23)
	assert.Equal(t, strings.TrimSuffix(diff, "\n"), colorDiff(diff, 23))
}

func TestNewResult_Passed(t *testing.T) {
	t.Parallel()

	suite := &testdef.Suite{Files: []string{"tests.txt"}, Digest: 0xabc}
	r := NewResult("/bin/sh", suite, passingSummary(), nil)

	assert.True(t, r.Passed)
	assert.Equal(t, 20, r.Points)
	assert.Len(t, r.Score, 2)
	assert.Equal(t, "0000000000000abc", r.Suite.Digest)
	assert.Equal(t, 3, r.Suite.Cases)
	assert.Equal(t, int64(1500), r.DurationMS)
	require.Len(t, r.Skipped, 1)
	assert.Equal(t, SkippedSection{Section: "Jobs", File: "tests.txt", Line: 40, Reason: "background"}, r.Skipped[0])
	assert.Empty(t, r.Error)
}

func TestNewResult_Failed(t *testing.T) {
	t.Parallel()

	sum := &scenario.Summary{Outcomes: []verify.Outcome{{Scenario: "exit-command", Passed: false}}}
	runErr := &scenario.Failure{Scenario: "exit-command", Hint: scenario.HintExit, Err: errors.New("timed out")}
	r := NewResult("./a.out", nil, sum, runErr)

	assert.False(t, r.Passed)
	assert.Zero(t, r.Points)
	assert.Nil(t, r.Score)
	assert.Equal(t, "exit-command: timed out", r.Error)
	assert.Equal(t, scenario.HintExit, r.Hint)
}

func TestNewResult_NoSummary(t *testing.T) {
	t.Parallel()

	r := NewResult("./a.out", nil, nil, errors.New("launch failed"))
	assert.Equal(t, "launch failed", r.Error)
	assert.NotNil(t, r.Scenarios)
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, NewResult("/bin/sh", nil, passingSummary(), nil)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, true, decoded["passed"])
	assert.Equal(t, float64(20), decoded["points"])
	assert.Contains(t, decoded, "tool")
	assert.Contains(t, buf.String(), "\n  \"subject\": \"/bin/sh\"")
}

func TestPrinter_SetPlannedSizesBar(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, Options{})
	p.SetPlanned(3)
	p.ScenarioPassed(verify.Outcome{Scenario: "one-by-one", Passed: true})
	p.Finish(&scenario.Summary{})

	assert.Contains(t, buf.String(), "1/3 scenarios")
	assert.NotContains(t, buf.String(), "Points")
}
