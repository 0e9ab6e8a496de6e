package verify

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// Gutter markers, as printed by `diff -y`.
const (
	MarkSame    = ' '
	MarkChanged = '|'
	MarkLeft    = '<'
	MarkRight   = '>'
)

// DefaultDiffWidth is the total width of a side-by-side rendering.
const DefaultDiffWidth = 130

// DiffRow is one line of a side-by-side rendering.
type DiffRow struct {
	Left  string
	Right string
	Mark  rune
}

// SideBySideRows aligns expected and actual line by line using go-difflib's
// sequence matcher opcodes.
func SideBySideRows(expected, actual string) []DiffRow {
	a := SplitLines(expected)
	b := SplitLines(actual)

	m := difflib.NewMatcher(a, b)
	var rows []DiffRow
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			for i := op.I1; i < op.I2; i++ {
				rows = append(rows, DiffRow{Left: a[i], Right: b[op.J1+i-op.I1], Mark: MarkSame})
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				rows = append(rows, DiffRow{Left: a[i], Mark: MarkLeft})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				rows = append(rows, DiffRow{Right: b[j], Mark: MarkRight})
			}
		case 'r':
			left, right := op.I2-op.I1, op.J2-op.J1
			for k := 0; k < max(left, right); k++ {
				row := DiffRow{Mark: MarkChanged}
				switch {
				case k >= left:
					row.Mark = MarkRight
				case k >= right:
					row.Mark = MarkLeft
				}
				if k < left {
					row.Left = a[op.I1+k]
				}
				if k < right {
					row.Right = b[op.J1+k]
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

// SideBySide renders expected (left) against actual (right) in width
// columns. Long lines are truncated to fit their column.
func SideBySide(expected, actual string, width int) string {
	if width < 20 {
		width = DefaultDiffWidth
	}
	col := (width - 3) / 2

	var sb strings.Builder
	for _, r := range SideBySideRows(expected, actual) {
		sb.WriteString(pad(r.Left, col))
		sb.WriteByte(' ')
		sb.WriteRune(r.Mark)
		sb.WriteByte(' ')
		sb.WriteString(strings.TrimRight(clip(r.Right, col), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// UnifiedDiff renders a unified diff for debug logs.
func UnifiedDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func pad(s string, n int) string {
	s = clip(s, n)
	if k := n - utf8.RuneCountInString(s); k > 0 {
		s += strings.Repeat(" ", k)
	}
	return s
}
