package testdef

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ----------------------------------------------------------------

// writeFile writes content to a file inside dir and returns the full path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// makeCase renders one well-formed case block.
func makeCase(name, body, output string) string {
	return MarkerCase + " " + name + " --------\n" + body + MarkerOutput + "\n" + output + MarkerEnd + "\n"
}

// requireParseError asserts err is a *ParseError wrapping want at line.
func requireParseError(t *testing.T, err error, want error, line int) {
	t.Helper()
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "expected *ParseError, got %T: %v", err, err)
	assert.ErrorIs(t, err, want)
	assert.Equal(t, line, pe.Line)
}

const basicDefinition = `######## Section Base commands

----# Test { simple echo ----------------------
echo 100
----# Output
100
----# }

----# Test { pipe --
echo 100 | cat
echo "multi
line"
----# Output
100
multi
line
----# }

######## Section bonus logical operators
----# Test {and
true && echo ok
----# Output
ok
----# }
`

// --- Parse ------------------------------------------------------------------

func TestParseString_Basic(t *testing.T) {
	t.Parallel()

	sections, err := ParseString(basicDefinition, "tests.txt")
	require.NoError(t, err)
	require.Len(t, sections, 2)

	base := sections[0]
	assert.Equal(t, "Base commands", base.Name)
	assert.Equal(t, 1, base.Line)
	assert.Equal(t, KindBase, base.Category.Kind)
	require.Len(t, base.Cases, 2)

	assert.Equal(t, Case{
		Name:   "simple echo",
		Line:   3,
		File:   "tests.txt",
		Body:   "echo 100\n",
		Output: "100\n",
	}, base.Cases[0])

	pipe := base.Cases[1]
	assert.Equal(t, "pipe", pipe.Name)
	assert.Equal(t, 9, pipe.Line)
	assert.Equal(t, "echo 100 | cat\necho \"multi\nline\"\n", pipe.Body)
	assert.Equal(t, "100\nmulti\nline\n", pipe.Output)

	logic := sections[1]
	assert.Equal(t, "bonus logical operators", logic.Name)
	assert.Equal(t, Category{Kind: KindBonusLogic, Label: "bonus logical operators"}, logic.Category)
	require.Len(t, logic.Cases, 1)
	assert.Equal(t, "and", logic.Cases[0].Name)
}

func TestParseString_SectionsAndCasesInFileOrder(t *testing.T) {
	t.Parallel()

	counts := []int{3, 1, 4, 2}
	var sb strings.Builder
	for si, n := range counts {
		fmt.Fprintf(&sb, "%sS%d\n", MarkerSection, si)
		for ci := 0; ci < n; ci++ {
			sb.WriteString(makeCase(fmt.Sprintf("c%d-%d", si, ci), fmt.Sprintf("echo %d\n", ci), fmt.Sprintf("%d\n", ci)))
		}
		sb.WriteString("\n")
	}

	sections, err := ParseString(sb.String(), "")
	require.NoError(t, err)
	require.Len(t, sections, len(counts))
	for si, n := range counts {
		assert.Equal(t, fmt.Sprintf("S%d", si), sections[si].Name)
		require.Len(t, sections[si].Cases, n)
		for ci, c := range sections[si].Cases {
			assert.Equal(t, fmt.Sprintf("c%d-%d", si, ci), c.Name)
		}
	}
	assert.Equal(t, 10, CountCases(sections))
}

func TestParseString_RoundTripsCaseContent(t *testing.T) {
	t.Parallel()

	bodies := []string{
		"echo a\n",
		"cat <<EOF\nline one\n  indented\n\nEOF\n",
		"\n\n",
		"printf '%s' '----# Test { not a marker'\n",
	}
	for i, body := range bodies {
		t.Run(fmt.Sprintf("body-%d", i), func(t *testing.T) {
			t.Parallel()
			output := strings.ToUpper(body)
			src := MarkerSection + "s\n" + makeCase("rt", body, output)

			sections, err := ParseString(src, "")
			require.NoError(t, err)
			c := sections[0].Cases[0]
			assert.Equal(t, body, c.Body)
			assert.Equal(t, output, c.Output)
		})
	}
}

func TestParseString_CaseNameTrimsSpacesAndDashes(t *testing.T) {
	t.Parallel()

	src := MarkerSection + "s\n" + MarkerCase + "  --name with - dash --  \n" + MarkerOutput + "\n" + MarkerEnd + "\n"
	sections, err := ParseString(src, "")
	require.NoError(t, err)
	assert.Equal(t, "name with - dash", sections[0].Cases[0].Name)
}

func TestParseString_EndMarkerInBodyClosesCaseWithEmptyOutput(t *testing.T) {
	t.Parallel()

	src := MarkerSection + "s\n" + MarkerCase + "no output\n" + "mkdir dir\n" + MarkerEnd + "\n"
	sections, err := ParseString(src, "")
	require.NoError(t, err)
	c := sections[0].Cases[0]
	assert.Equal(t, "mkdir dir\n", c.Body)
	assert.Empty(t, c.Output)
}

func TestParseString_SecondOutputMarkerIsOutputText(t *testing.T) {
	t.Parallel()

	src := MarkerSection + "s\n" + MarkerCase + "x\n" + "echo\n" + MarkerOutput + "\n" + MarkerOutput + "\n" + MarkerEnd + "\n"
	sections, err := ParseString(src, "")
	require.NoError(t, err)
	assert.Equal(t, MarkerOutput+"\n", sections[0].Cases[0].Output)
}

func TestParseString_CRLFAndBOM(t *testing.T) {
	t.Parallel()

	src := utf8BOM + strings.ReplaceAll(MarkerSection+"s\n"+makeCase("crlf", "echo 1\n", "1\n"), "\n", "\r\n")
	sections, err := ParseString(src, "")
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "echo 1\n", sections[0].Cases[0].Body)
	assert.Equal(t, "1\n", sections[0].Cases[0].Output)
}

func TestParseString_EmptySectionWithoutCasesIsKept(t *testing.T) {
	t.Parallel()

	sections, err := ParseString(MarkerSection+"empty\n\n"+MarkerSection+"other\n", "")
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Empty(t, sections[0].Cases)
}

// --- Parse errors -----------------------------------------------------------

func TestParseString_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    error
		line    int
	}{
		{
			name:    "whitespace section name",
			content: "\n" + MarkerSection + "   \t \n",
			want:    ErrEmptySectionName,
			line:    2,
		},
		{
			name:    "empty case name",
			content: MarkerSection + "s\n" + MarkerCase + " -- --\n",
			want:    ErrEmptyCaseName,
			line:    2,
		},
		{
			name:    "case before any section",
			content: MarkerCase + "orphan\n",
			want:    ErrCaseOutsideSection,
			line:    1,
		},
		{
			name:    "unknown syntax",
			content: MarkerSection + "s\n" + makeCase("ok", "echo\n", "\n") + "echo stray\n",
			want:    ErrUnknownSyntax,
			line:    7,
		},
		{
			name:    "whitespace-only line outside case",
			content: MarkerSection + "s\n  \n",
			want:    ErrUnknownSyntax,
			line:    2,
		},
		{
			name:    "section header without trailing space",
			content: "######## Section\n",
			want:    ErrUnknownSyntax,
			line:    1,
		},
		{
			name:    "unfinished case in body",
			content: MarkerSection + "s\n" + MarkerCase + "open\necho 1\n",
			want:    ErrUnfinishedCase,
			line:    2,
		},
		{
			name:    "unfinished case in output",
			content: MarkerSection + "s\n" + makeCase("a", "x\n", "x\n") + MarkerCase + "open\necho 1\n" + MarkerOutput + "\n1\n",
			want:    ErrUnfinishedCase,
			line:    7,
		},
		{
			name:    "empty file",
			content: "",
			want:    ErrNoTests,
			line:    0,
		},
		{
			name:    "blank lines only",
			content: "\n\n\n",
			want:    ErrNoTests,
			line:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseString(tt.content, "defs.txt")
			requireParseError(t, err, tt.want, tt.line)
		})
	}
}

func TestParseString_UnfinishedCaseRegardlessOfLength(t *testing.T) {
	t.Parallel()

	for _, bodyLines := range []int{0, 1, 50, 5000} {
		src := MarkerSection + "s\n" + MarkerCase + "open\n" + strings.Repeat("echo x\n", bodyLines)
		_, err := ParseString(src, "")
		requireParseError(t, err, ErrUnfinishedCase, 2)
	}
}

func TestParseError_Message(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "tests.txt:4: unknown test syntax",
		(&ParseError{File: "tests.txt", Line: 4, Err: ErrUnknownSyntax}).Error())
	assert.Equal(t, "line 4: unknown test syntax",
		(&ParseError{Line: 4, Err: ErrUnknownSyntax}).Error())
	assert.Equal(t, "tests.txt: no tests found",
		(&ParseError{File: "tests.txt", Err: ErrNoTests}).Error())
	assert.Equal(t, "no tests found", (&ParseError{Err: ErrNoTests}).Error())
}

// --- ParseFile / Parse ------------------------------------------------------

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "tests.txt", basicDefinition)
	sections, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, path, sections[0].Cases[0].File)
	assert.Equal(t, path+":3", sections[0].Cases[0].Location())
}

func TestParseFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := ParseFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_TooLarge(t *testing.T) {
	t.Parallel()

	big := strings.NewReader(strings.Repeat("a", maxDefinitionSize+1))
	_, err := Parse(big, "big.txt")
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCaseLocation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "line 12", Case{Line: 12}.Location())
	assert.Equal(t, "a.txt:12", Case{Line: 12, File: "a.txt"}.Location())
}

func TestConcat(t *testing.T) {
	t.Parallel()

	sections, err := ParseString(basicDefinition, "")
	require.NoError(t, err)

	body, output := Concat(sections)
	assert.Equal(t, "echo 100\necho 100 | cat\necho \"multi\nline\"\ntrue && echo ok\n", body)
	assert.Equal(t, "100\n100\nmulti\nline\nok\n", output)
}
