package wikitext

import (
	"fmt"

	"github.com/gowiki/wikitext/peg"
)

// Severity classifies a Diagnostic. All diagnostics produced by this
// package are non-fatal (spec section 7): they never affect the tree
// already produced, they only annotate it.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityInfo
)

// Diagnostic is a non-fatal observation made while parsing, e.g. an
// unclosed comment, an unclosed inclusion region or an unclosed HTML
// element (spec section 7).
type Diagnostic struct {
	Severity Severity
	Message  string
	Position peg.Position
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Position.String(), d.Message)
}

// diagnosticSink collects Diagnostics during a parse and, if a logger is
// configured, emits each one as a structured log record as it is
// produced — in addition to the slice Parse ultimately returns (spec
// section 6, "[EXPANDED] ambient stack" logging note).
type diagnosticSink struct {
	cfg   *Config
	items []Diagnostic
}

func newDiagnosticSink(cfg *Config) *diagnosticSink {
	return &diagnosticSink{cfg: cfg}
}

func (s *diagnosticSink) warn(pos peg.Position, format string, args ...interface{}) {
	s.emit(SeverityWarning, pos, fmt.Sprintf(format, args...))
}

func (s *diagnosticSink) info(pos peg.Position, format string, args ...interface{}) {
	s.emit(SeverityInfo, pos, fmt.Sprintf(format, args...))
}

func (s *diagnosticSink) emit(sev Severity, pos peg.Position, message string) {
	d := Diagnostic{Severity: sev, Message: message, Position: pos}
	s.items = append(s.items, d)
	if s.cfg == nil || s.cfg.Logger == nil {
		return
	}
	level := "debug"
	if sev == SeverityWarning {
		level = "warn"
	}
	s.cfg.Logger.Debug("wikitext diagnostic",
		"level", level, "pos", pos.String(), "message", message)
}
