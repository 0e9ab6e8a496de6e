package testdef

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxDefinitionSize caps how much of a definition file is read.
const maxDefinitionSize = 16 << 20

const utf8BOM = "\xef\xbb\xbf"

// Line markers, matched by prefix.
const (
	MarkerSection = "######## Section "
	MarkerCase    = "----# Test {"
	MarkerOutput  = "----# Output"
	MarkerEnd     = "----# }"
)

// state is the parser position. Transitions happen only in parser.feed.
type state int

const (
	stateOutside state = iota
	stateInSection
	stateInCaseBody
	stateInCaseOutput
)

func (s state) String() string {
	switch s {
	case stateOutside:
		return "outside"
	case stateInSection:
		return "section"
	case stateInCaseBody:
		return "body"
	case stateInCaseOutput:
		return "output"
	default:
		return "invalid"
	}
}

type parser struct {
	file     string
	state    state
	sections []Section
	section  Section
	current  Case
	body     strings.Builder
	output   strings.Builder
}

// Parse reads a definition from r. name is used in error messages and in
// Case.File; it may be empty.
func Parse(r io.Reader, name string) ([]Section, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxDefinitionSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", displayName(name), err)
	}
	if len(data) > maxDefinitionSize {
		return nil, &ParseError{File: name, Err: ErrFileTooLarge}
	}
	return ParseString(string(data), name)
}

// ParseString parses definition content held in memory.
func ParseString(content, name string) ([]Section, error) {
	content = strings.TrimPrefix(content, utf8BOM)

	p := &parser{file: name}
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), maxDefinitionSize)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if err := p.feed(line, lineNo); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", displayName(name), err)
	}
	return p.finish()
}

// ParseFile opens and parses a definition file.
func ParseFile(path string) ([]Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening definition file %q: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	return Parse(f, path)
}

func (p *parser) feed(line string, lineNo int) error {
	switch p.state {
	case stateInCaseBody:
		switch {
		case strings.HasPrefix(line, MarkerOutput):
			p.state = stateInCaseOutput
		case strings.HasPrefix(line, MarkerEnd):
			p.closeCase()
		default:
			p.body.WriteString(line)
			p.body.WriteByte('\n')
		}
		return nil

	case stateInCaseOutput:
		if strings.HasPrefix(line, MarkerEnd) {
			p.closeCase()
			return nil
		}
		p.output.WriteString(line)
		p.output.WriteByte('\n')
		return nil
	}

	// Outside or between cases of a section.
	switch {
	case strings.HasPrefix(line, MarkerSection):
		name := strings.TrimSpace(line[len(MarkerSection):])
		if name == "" {
			return p.errorf(lineNo, ErrEmptySectionName)
		}
		p.closeSection()
		p.section = Section{
			Name:     name,
			Line:     lineNo,
			File:     p.file,
			Category: Classify(name),
			Cases:    []Case{},
		}
		p.state = stateInSection

	case line == "":
		// Blank lines between cases are layout only.

	case strings.HasPrefix(line, MarkerCase):
		name := strings.Trim(line[len(MarkerCase):], " -")
		if name == "" {
			return p.errorf(lineNo, ErrEmptyCaseName)
		}
		if p.state != stateInSection {
			return p.errorf(lineNo, ErrCaseOutsideSection)
		}
		p.current = Case{Name: name, Line: lineNo, File: p.file}
		p.body.Reset()
		p.output.Reset()
		p.state = stateInCaseBody

	default:
		return p.errorf(lineNo, ErrUnknownSyntax)
	}
	return nil
}

func (p *parser) closeCase() {
	p.current.Body = p.body.String()
	p.current.Output = p.output.String()
	p.section.Cases = append(p.section.Cases, p.current)
	p.current = Case{}
	p.state = stateInSection
}

func (p *parser) closeSection() {
	if p.state == stateInSection {
		p.sections = append(p.sections, p.section)
	}
	p.section = Section{}
}

func (p *parser) finish() ([]Section, error) {
	switch p.state {
	case stateInCaseBody, stateInCaseOutput:
		return nil, p.errorf(p.current.Line, ErrUnfinishedCase)
	case stateInSection:
		p.closeSection()
	}
	if len(p.sections) == 0 {
		return nil, &ParseError{File: p.file, Err: ErrNoTests}
	}
	return p.sections, nil
}

func (p *parser) errorf(line int, err error) error {
	return &ParseError{File: p.file, Line: line, Err: err}
}

func displayName(name string) string {
	if name == "" {
		return "definition"
	}
	return name
}
