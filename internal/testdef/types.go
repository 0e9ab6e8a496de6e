package testdef

import "strings"

// Case is one scripted interaction: Body is written to the shell's stdin and
// Output is what the shell must print. Both keep a trailing "\n" per line.
type Case struct {
	Name string `json:"name"`
	// Line is the 1-based line of the case header in File.
	Line   int    `json:"line"`
	File   string `json:"file,omitempty"`
	Body   string `json:"body"`
	Output string `json:"output"`
}

// Location renders "file:line" or just the line when File is empty.
func (c Case) Location() string {
	if c.File == "" {
		return "line " + itoa(c.Line)
	}
	return c.File + ":" + itoa(c.Line)
}

// Section is a named, ordered group of cases sharing a category.
type Section struct {
	Name     string   `json:"name"`
	Line     int      `json:"line"`
	File     string   `json:"file,omitempty"`
	Category Category `json:"category"`
	Cases    []Case   `json:"cases"`
}

// Features is the set of optional feature areas enabled for a run.
type Features struct {
	Logic      bool `json:"logic"`
	Background bool `json:"background"`
}

// Enabled lists the enabled feature names in a stable order.
func (f Features) Enabled() []string {
	var out []string
	if f.Logic {
		out = append(out, "logic")
	}
	if f.Background {
		out = append(out, "background")
	}
	return out
}

func (f Features) String() string {
	names := f.Enabled()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// CountCases returns the total number of cases across sections.
func CountCases(sections []Section) int {
	n := 0
	for _, s := range sections {
		n += len(s.Cases)
	}
	return n
}

// Concat joins every case body and every case output in section order.
func Concat(sections []Section) (body, output string) {
	var b, o strings.Builder
	for _, s := range sections {
		for _, c := range s.Cases {
			b.WriteString(c.Body)
			o.WriteString(c.Output)
		}
	}
	return b.String(), o.String()
}
