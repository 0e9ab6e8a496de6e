package verify

import "strings"

// Text requires actual to equal expected byte for byte.
func Text(subject, expected, actual string) error {
	if expected == actual {
		return nil
	}
	return &MismatchError{
		Kind:     KindOutput,
		Subject:  subject,
		Expected: expected,
		Actual:   actual,
	}
}

// Lines compares the overlapping prefix of two transcripts line by line and
// stops at the first difference. When the prefix matches but the lengths
// differ, a KindLineCount mismatch is returned instead.
func Lines(subject string, expected, actual []string) error {
	n := min(len(expected), len(actual))
	for i := 0; i < n; i++ {
		if expected[i] != actual[i] {
			return &MismatchError{
				Kind:          KindLine,
				Subject:       subject,
				Line:          i + 1,
				Expected:      expected[i],
				Actual:        actual[i],
				ExpectedLines: len(expected),
				ActualLines:   len(actual),
			}
		}
	}
	if len(expected) != len(actual) {
		return &MismatchError{
			Kind:          KindLineCount,
			Subject:       subject,
			ExpectedLines: len(expected),
			ActualLines:   len(actual),
		}
	}
	return nil
}

// ExitCode requires got to equal want.
func ExitCode(subject string, want, got int) error {
	if want == got {
		return nil
	}
	return &MismatchError{
		Kind:     KindExitCode,
		Subject:  subject,
		WantCode: want,
		GotCode:  got,
	}
}

// SplitLines splits s on "\n". A trailing newline does not produce a final
// empty line, so "a\nb\n" and "a\nb" both yield two lines.
func SplitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
