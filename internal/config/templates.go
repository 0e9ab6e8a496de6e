package config

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"
)

//go:embed all:templates
var templateFS embed.FS

// templatesRoot is the top-level directory in the embedded FS that contains
// all init templates.
const templatesRoot = "templates"

// DefaultTemplate writes a commented config and a starter definition file.
const DefaultTemplate = "default"

// TemplateVars holds variables available for text/template substitution when
// rendering .tmpl files. Non-template files are copied as-is.
type TemplateVars struct {
	// Executable is the subject path (e.g., "./a.out").
	Executable string
	// TestFiles are the definition files or globs.
	TestFiles []string
	// Logic and Background enable the bonus sections.
	Logic      bool
	Background bool
	// ManyArgsCount sizes the many-arguments scale test.
	ManyArgsCount int
}

// DefaultTemplateVars returns the variables that reproduce NewDefaults.
func DefaultTemplateVars() TemplateVars {
	d := NewDefaults()
	return TemplateVars{
		Executable:    d.Subject.Executable,
		TestFiles:     d.Tests.Files,
		ManyArgsCount: d.Limits.ManyArgsCount,
	}
}

// ListTemplates returns the names of all available init templates by reading
// the top-level directories from the embedded filesystem.
func ListTemplates() ([]string, error) {
	entries, err := templateFS.ReadDir(templatesRoot)
	if err != nil {
		return nil, fmt.Errorf("reading templates directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// TemplateExists reports whether a template with the given name exists in the
// embedded filesystem.
func TemplateExists(name string) bool {
	path := templatesRoot + "/" + name
	info, err := fs.Stat(templateFS, path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// RenderResult lists the files written and the existing files left alone.
type RenderResult struct {
	Created []string
	Skipped []string
}

// RenderTemplate writes the named template's files into destDir. Files whose
// names end in ".tmpl" are executed with text/template and written without
// the extension; other files are copied as-is. Existing files are skipped
// unless force is set.
func RenderTemplate(name string, destDir string, vars TemplateVars, force bool) (*RenderResult, error) {
	if !TemplateExists(name) {
		return nil, fmt.Errorf("template %q not found", name)
	}

	root := templatesRoot + "/" + name
	res := &RenderResult{}

	err := fs.WalkDir(templateFS, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking template %s: %w", path, err)
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(path, root+"/")
		isTmpl := strings.HasSuffix(rel, ".tmpl")
		dest := filepath.Join(destDir, filepath.FromSlash(strings.TrimSuffix(rel, ".tmpl")))

		if _, statErr := os.Stat(dest); statErr == nil && !force {
			log.Debug("skipping existing file", "path", dest)
			res.Skipped = append(res.Skipped, dest)
			return nil
		}

		content, err := templateFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded file %s: %w", path, err)
		}
		if isTmpl {
			content, err = execute(d.Name(), content, vars)
			if err != nil {
				return err
			}
		}

		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", dest, err)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return fmt.Errorf("writing file %s: %w", dest, err)
		}
		log.Debug("created template file", "path", dest)
		res.Created = append(res.Created, dest)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func execute(name string, content []byte, vars TemplateVars) ([]byte, error) {
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
