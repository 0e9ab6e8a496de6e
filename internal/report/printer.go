// Package report renders run progress and results for humans and machines.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/scenario"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/testdef"
	"github.com/AbdelazizMoustafa10m/shellprobe/internal/verify"
)

const progressBarWidth = 30

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // dark gray
	titleStyle = lipgloss.NewStyle().Bold(true)
)

// Options configures a Printer.
type Options struct {
	// Quiet suppresses progress lines. Failures and the final line are still
	// printed.
	Quiet bool
	// Planned is the number of scenarios the run will attempt. It sizes the
	// progress bar of the final summary; zero hides the bar.
	Planned int
	// DiffWidth must match the width the diff was rendered with so changed
	// rows can be highlighted.
	DiffWidth int
}

// Printer writes checker-style progress lines. It implements
// scenario.Observer.
type Printer struct {
	w      io.Writer
	opts   Options
	passed int
}

var _ scenario.Observer = (*Printer)(nil)

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

// SetPlanned updates the number of scenarios the bar is sized for, once the
// driver has selected them.
func (p *Printer) SetPlanned(n int) {
	p.opts.Planned = n
}

// SectionSkipped prints e.g. "Skipped on logic section Logical operators".
func (p *Printer) SectionSkipped(s testdef.Skipped) {
	if p.opts.Quiet {
		return
	}
	fmt.Fprintln(p.w, skipStyle.Render(fmt.Sprintf("Skipped on %s section %s", s.Reason, s.Section.Name)))
}

func (p *Printer) ScenarioStarted(_, title string) {
	if p.opts.Quiet {
		return
	}
	fmt.Fprintf(p.w, "⏳ %s\n", titleStyle.Render(title))
}

func (p *Printer) ScenarioPassed(verify.Outcome) {
	p.passed++
	if p.opts.Quiet {
		return
	}
	fmt.Fprintf(p.w, "✅ %s\n", passStyle.Render("Passed"))
}

// ScenarioFailed prints the error, the likely cause, and in diagnostic mode
// the side-by-side diff with the artifact paths.
func (p *Printer) ScenarioFailed(o verify.Outcome, err error) {
	fmt.Fprintf(p.w, "❌ %s\n", failStyle.Render(err.Error()))
	if f, ok := scenario.AsFailure(err); ok && f.Hint != "" {
		fmt.Fprintln(p.w, hintStyle.Render(f.Hint))
	}
	if o.Diff != "" {
		fmt.Fprintln(p.w, diffBanner)
		fmt.Fprintln(p.w, colorDiff(o.Diff, p.opts.DiffWidth))
	}
	for _, path := range o.ArtifactPaths {
		fmt.Fprintf(p.w, "   wrote %s\n", path)
	}
}

// Finish prints the score of a passing run, or the progress reached by a
// failed one.
func (p *Printer) Finish(sum *scenario.Summary) {
	if p.opts.Planned > 0 && !p.opts.Quiet {
		fmt.Fprintln(p.w, p.bar())
	}
	if sum != nil && sum.Passed() {
		fmt.Fprintf(p.w, "⏫ Points: %d\n", sum.Score.Total())
	}
}

// bar renders the scenario progress using bubbles/progress ViewAs.
//
//	██████████████░░░░░░ 5/7 scenarios
func (p *Printer) bar() string {
	pct := float64(p.passed) / float64(p.opts.Planned)
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(progressBarWidth),
		progress.WithoutPercentage(),
	)
	return fmt.Sprintf("%s %d/%d scenarios", bar.ViewAs(pct), p.passed, p.opts.Planned)
}

const diffBanner = "<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<<< Diff >>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>>"

// colorDiff highlights the rows of a side-by-side diff whose gutter marks a
// difference.
func colorDiff(diff string, width int) string {
	if width < 20 {
		width = verify.DefaultDiffWidth
	}
	gutter := (width-3)/2 + 1
	lines := strings.Split(strings.TrimSuffix(diff, "\n"), "\n")
	for i, line := range lines {
		r := []rune(line)
		if len(r) > gutter && r[gutter] != verify.MarkSame {
			lines[i] = hintStyle.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
