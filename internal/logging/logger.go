package logging

import (
	"log"
	"time"
)

// Reporter receives progress messages from the archive and matching code.
// Nothing in the core depends on a Reporter doing anything.
type Reporter interface {
	Infof(format string, args ...any)
	Debugf(format string, args ...any)
}

type discard struct{}

func (discard) Infof(string, ...any)  {}
func (discard) Debugf(string, ...any) {}

// Discard drops every message.
var Discard Reporter = discard{}

// Logger writes tagged lines through the standard logger, e.g. "[tiger] ...".
type Logger struct {
	Tag     string
	Verbose bool
}

// New returns a Logger for the given component tag.
func New(tag string, verbose bool) *Logger {
	return &Logger{Tag: tag, Verbose: verbose}
}

func (l *Logger) Infof(format string, args ...any) {
	log.Printf("["+l.Tag+"] "+format, args...)
}

// Debugf is a no-op unless Verbose is set.
func (l *Logger) Debugf(format string, args ...any) {
	if !l.Verbose {
		return
	}
	log.Printf("["+l.Tag+"] debug: "+format, args...)
}

// LogDuration logs how long a named step took.
func LogDuration(r Reporter, step string, start time.Time) {
	r.Infof("%s took %dms", step, time.Since(start).Milliseconds())
}

// OrDiscard returns r, or Discard when r is nil.
func OrDiscard(r Reporter) Reporter {
	if r == nil {
		return Discard
	}
	return r
}
