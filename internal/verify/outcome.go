package verify

import "time"

// Outcome is the result of one scenario. It lives only long enough to be
// reported.
type Outcome struct {
	Scenario string        `json:"scenario"`
	Passed   bool          `json:"passed"`
	Checks   int           `json:"checks"`
	Duration time.Duration `json:"duration"`

	// Expected/Actual and the exit codes describe the failing comparison.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	WantCode int    `json:"want_code,omitempty"`
	GotCode  int    `json:"got_code,omitempty"`

	// Diff is the side-by-side rendering, set in diagnostic mode only.
	Diff string `json:"diff,omitempty"`
	// ArtifactPaths are the files written in diagnostic mode.
	ArtifactPaths []string `json:"artifact_paths,omitempty"`
}

// Fail records the details of err on the outcome. Errors other than
// *MismatchError only flip Passed.
func (o *Outcome) Fail(err error) {
	o.Passed = false
	me, ok := AsMismatch(err)
	if !ok {
		return
	}
	o.Expected = me.Expected
	o.Actual = me.Actual
	o.WantCode = me.WantCode
	o.GotCode = me.GotCode
}
