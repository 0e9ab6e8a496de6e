package report

import (
	"encoding/json"
	"io"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/scenario"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

// SuiteInfo identifies the definitions a run used.
type SuiteInfo struct {
	Files  []string `json:"files"`
	Digest string   `json:"digest"`
	Cases  int      `json:"cases"`
}

// SkippedSection is a section left out because its feature was disabled.
type SkippedSection struct {
	Section string `json:"section"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line"`
	Reason  string `json:"reason"`
}

// Result is the JSON document written by `shellprobe run --json`.
type Result struct {
	Tool       buildinfo.Info      `json:"tool"`
	Subject    string              `json:"subject"`
	Suite      SuiteInfo           `json:"suite"`
	Features   testdef.Features    `json:"features"`
	Passed     bool                `json:"passed"`
	Points     int                 `json:"points"`
	Score      []verify.ScoreEntry `json:"score,omitempty"`
	Skipped    []SkippedSection    `json:"skipped,omitempty"`
	Scenarios  []verify.Outcome    `json:"scenarios"`
	Error      string              `json:"error,omitempty"`
	Hint       string              `json:"hint,omitempty"`
	DurationMS int64               `json:"duration_ms"`
}

// NewResult assembles a Result. sum may be partial or nil when the run
// failed before or during the battery.
func NewResult(subject string, suite *testdef.Suite, sum *scenario.Summary, runErr error) Result {
	r := Result{
		Tool:      buildinfo.GetInfo(),
		Subject:   subject,
		Scenarios: []verify.Outcome{},
	}
	if suite != nil {
		r.Suite = SuiteInfo{Files: suite.Files, Digest: suite.DigestHex()}
	}
	if sum != nil {
		r.Suite.Cases = sum.Cases
		r.Features = sum.Features
		r.Scenarios = append(r.Scenarios, sum.Outcomes...)
		r.DurationMS = sum.Duration.Milliseconds()
		for _, s := range sum.Skipped {
			r.Skipped = append(r.Skipped, SkippedSection{
				Section: s.Section.Name,
				File:    s.Section.File,
				Line:    s.Section.Line,
				Reason:  s.Reason,
			})
		}
		if runErr == nil && sum.Passed() {
			r.Passed = true
			r.Points = sum.Score.Total()
			r.Score = sum.Score.Entries()
		}
	}
	if runErr != nil {
		r.Error = runErr.Error()
		if f, ok := scenario.AsFailure(runErr); ok {
			r.Hint = f.Hint
		}
	}
	return r
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
