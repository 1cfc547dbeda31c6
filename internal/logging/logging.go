// Package logging provides the leveled invocation logger that telemetry code
// reports through. Telemetry is best-effort everywhere, so callers log and
// continue instead of returning errors to the module user.
package logging

import (
	"log"
	"sync"
)

// Level classifies a log line.
type Level int

const (
	LevelVerbose Level = iota
	LevelWarning
	LevelError
)

// String returns the level name used as the log line prefix.
func (l Level) String() string {
	switch l {
	case LevelVerbose:
		return "VERBOSE"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Logger accepts a message, a level, and an optional error. Implementations
// must be safe for concurrent use; telemetry emits from multiple goroutines.
type Logger interface {
	Log(message string, level Level, err error)
}

// StdLogger implements Logger on the standard library log package.
// Verbose lines are dropped unless Verbose is true.
type StdLogger struct {
	Verbose bool

	mu  sync.Mutex
	out *log.Logger
}

// NewStdLogger returns a StdLogger writing to the default log output.
// Pass verbose=true to include verbose lines.
func NewStdLogger(verbose bool) *StdLogger {
	return &StdLogger{Verbose: verbose, out: log.Default()}
}

// Log writes one line as "LEVEL: message" and appends ": err" when err is non-nil.
func (l *StdLogger) Log(message string, level Level, err error) {
	if level == LevelVerbose && !l.Verbose {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.out
	if out == nil {
		out = log.Default()
	}
	if err != nil {
		out.Printf("%s: %s: %v", level, message, err)
		return
	}
	out.Printf("%s: %s", level, message)
}

// SetOutput redirects log lines to the given logger. Used by tests.
func (l *StdLogger) SetOutput(out *log.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}
