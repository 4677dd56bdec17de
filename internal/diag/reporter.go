package diag

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level is the verbosity/severity of a diagnostic line.
type Level int

const (
	DEBUG Level = iota
	NOTE
	WARNING
	ERROR
)

var tags = map[Level]string{
	DEBUG:   "[DEBUG]",
	NOTE:    "[NOTE ]",
	WARNING: "[WARN ]",
	ERROR:   "[ERROR]",
}

var tagColor = map[Level]*color.Color{
	DEBUG:   color.New(color.FgHiBlack),
	NOTE:    color.New(color.FgCyan),
	WARNING: color.New(color.FgYellow),
	ERROR:   color.New(color.FgRed, color.Bold),
}

var boldRe = regexp.MustCompile(`===(.*?)===`)

// Reporter prints diagnostics in a "[LEVEL] [ nnn] message" format. Only
// Errorf terminates the process (exit code 3); Report and ReportErr print an
// ERROR-level diagnostic and record it (see Errored) without exiting, and
// the caller decides the exit code. Diagnostics from every phase go through
// it so that verbosity and color policy stay in one place; cmd/elasticc
// still writes a few messages to stderr directly.
type Reporter struct {
	out      io.Writer
	minLevel Level
	errored  bool
	exitFunc func(int)
}

// NewReporter constructs a Reporter writing to w. Color is disabled
// automatically when w is not a terminal, using color.NoColor together
// with go-isatty.
func NewReporter(w io.Writer) *Reporter {
	if f, ok := w.(*os.File); ok {
		color.NoColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}
	return &Reporter{out: w, minLevel: NOTE, exitFunc: os.Exit}
}

// SetVerbosity adjusts the minimum Level printed: -v lowers it to DEBUG,
// -q raises it to WARNING.
func (r *Reporter) SetVerbosity(l Level) { r.minLevel = l }

// Errored reports whether an ERROR-level diagnostic has been emitted.
func (r *Reporter) Errored() bool { return r.errored }

func renderBold(msg string) string {
	return boldRe.ReplaceAllStringFunc(msg, func(m string) string {
		inner := boldRe.FindStringSubmatch(m)[1]
		return color.New(color.Bold).Sprint(inner)
	})
}

// Report prints one diagnostic. line <= 0 renders as six blank spaces
// instead of a line number, for diagnostics with no source position.
func (r *Reporter) Report(level Level, line int, format string, args ...interface{}) {
	if level < r.minLevel {
		return
	}
	msg := renderBold(fmt.Sprintf(format, args...))
	msg = strings.ReplaceAll(msg, "\n", "\n       ")
	lineField := "      "
	if line > 0 {
		lineField = fmt.Sprintf("[%3d]", line)
	}
	tag := tagColor[level].Sprint(tags[level])
	fmt.Fprintf(r.out, "%s %s %s\n", tag, lineField, msg)
	if level == ERROR {
		r.errored = true
	}
}

// Debugf reports at DEBUG level.
func (r *Reporter) Debugf(line int, format string, args ...interface{}) { r.Report(DEBUG, line, format, args...) }

// Notef reports at NOTE level.
func (r *Reporter) Notef(line int, format string, args ...interface{}) { r.Report(NOTE, line, format, args...) }

// Warnf reports at WARNING level.
func (r *Reporter) Warnf(line int, format string, args ...interface{}) { r.Report(WARNING, line, format, args...) }

// Errorf reports at ERROR level and terminates the process. Fatal
// conditions not caught earlier (Go panics converted at a phase boundary)
// should route here too, so the process always exits through the same
// path.
func (r *Reporter) Errorf(line int, format string, args ...interface{}) {
	r.Report(ERROR, line, format, args...)
	r.exitFunc(3)
}

// ReportErr routes a ParseError/EvalError/InternalError through Report at
// the appropriate level, without necessarily exiting (the caller decides
// whether to continue, e.g. the parser resynchronizing after a ParseError).
func (r *Reporter) ReportErr(err error) {
	switch e := err.(type) {
	case *ParseError:
		r.Report(ERROR, e.Line, "%s", e.Error())
	case *EvalError:
		r.Report(ERROR, e.Line, "%s", e.Error())
	case *InternalError:
		r.Report(ERROR, 0, "%s", e.Error())
	default:
		r.Report(ERROR, 0, "%s", err.Error())
	}
	r.errored = true
}
