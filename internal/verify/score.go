package verify

// Default scoring: a fully passing run is worth BasePoints, and each enabled
// bonus feature area adds BonusPoints.
const (
	BasePoints  = 15
	BonusPoints = 5
)

// ScoreEntry is one awarded increment.
type ScoreEntry struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// Score accumulates points over one run. The driver only adds to it after
// every scenario has passed, so a failed run never reports a score.
type Score struct {
	entries []ScoreEntry
	total   int
}

// Add records points for reason.
func (s *Score) Add(reason string, points int) {
	s.entries = append(s.entries, ScoreEntry{Reason: reason, Points: points})
	s.total += points
}

// Total returns the sum of all awarded points.
func (s *Score) Total() int {
	return s.total
}

// Entries returns the awarded increments in order.
func (s *Score) Entries() []ScoreEntry {
	out := make([]ScoreEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
