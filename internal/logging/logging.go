// Package logging configures shellprobe's loggers on top of charmbracelet/log.
//
// Every log line goes to stderr. Stdout belongs to the run report so that
// `shellprobe run --json` stays machine-readable even with --verbose.
//
//	logging.Setup(logging.Options{Verbose: true})
//	logger := logging.New("harness")
//	logger.Debug("spawned subject", "pid", pid)
//
// Setup must run before New: charmbracelet/log copies the default logger's
// level and formatter into a child at creation time.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Level aliases so callers do not import charmbracelet/log for comparisons.
const (
	LevelDebug = log.DebugLevel
	LevelInfo  = log.InfoLevel
	LevelWarn  = log.WarnLevel
	LevelError = log.ErrorLevel
)

// FormatJSON is the value of SHELLPROBE_LOG_FORMAT that selects NDJSON output.
const FormatJSON = "json"

// Options selects the global log level and formatter.
type Options struct {
	// Verbose lowers the level to Debug.
	Verbose bool
	// Quiet raises the level to Error. Quiet wins over Verbose.
	Quiet bool
	// JSON switches to the JSON formatter.
	JSON bool
}

// OptionsFromFormat builds Options from the flag pair and a format name as
// found in SHELLPROBE_LOG_FORMAT. Unknown formats fall back to text.
func OptionsFromFormat(verbose, quiet bool, format string) Options {
	return Options{
		Verbose: verbose,
		Quiet:   quiet,
		JSON:    strings.EqualFold(strings.TrimSpace(format), FormatJSON),
	}
}

// Setup configures the default logger. Call once from the CLI pre-run hook.
func Setup(opts Options) {
	log.SetLevel(opts.level())
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	if opts.JSON {
		log.SetFormatter(log.JSONFormatter)
	} else {
		log.SetFormatter(log.TextFormatter)
	}
}

func (o Options) level() log.Level {
	switch {
	case o.Quiet:
		return log.ErrorLevel
	case o.Verbose:
		return log.DebugLevel
	default:
		return log.InfoLevel
	}
}

// New returns a logger prefixed with the component name, e.g. "<scenario>".
func New(component string) *log.Logger {
	return log.WithPrefix(component)
}

// Nop returns a logger that drops everything. Packages accept a nil
// *log.Logger and substitute Nop so that tests do not need a logger.
func Nop() *log.Logger {
	return log.New(io.Discard)
}

// OrNop returns l, or Nop when l is nil.
func OrNop(l *log.Logger) *log.Logger {
	if l == nil {
		return Nop()
	}
	return l
}

// SetOutput redirects the default logger. Tests use it with a bytes.Buffer
// and restore os.Stderr in t.Cleanup.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}
