package release

import (
	"fmt"
	"io"
)

// Logger provides structured logging for pipeline steps.
// This interface allows callers to plug in their own logging implementation.
type Logger interface {
	// Debug logs debug-level messages with optional key-value pairs.
	Debug(msg string, keysAndValues ...interface{})

	// Info logs info-level messages with optional key-value pairs.
	Info(msg string, keysAndValues ...interface{})

	// Warn logs warning-level messages with optional key-value pairs.
	Warn(msg string, keysAndValues ...interface{})

	// Error logs error-level messages with optional key-value pairs.
	Error(msg string, keysAndValues ...interface{})
}

// noopLogger is a Logger implementation that does nothing.
// This is the default logger used when none is provided.
type noopLogger struct{}

func (n *noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (n *noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() Logger {
	return &noopLogger{}
}

// writerLogger writes one line per message to an io.Writer, with key-value
// pairs appended as key=value. Debug messages are dropped unless verbose.
type writerLogger struct {
	w       io.Writer
	verbose bool
}

// NewWriterLogger returns a logger writing to w, typically stderr.
func NewWriterLogger(w io.Writer, verbose bool) Logger {
	return &writerLogger{w: w, verbose: verbose}
}

func (l *writerLogger) Debug(msg string, keysAndValues ...interface{}) {
	if l.verbose {
		l.log("DEBUG", msg, keysAndValues)
	}
}

func (l *writerLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log("INFO", msg, keysAndValues)
}

func (l *writerLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log("WARN", msg, keysAndValues)
}

func (l *writerLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log("ERROR", msg, keysAndValues)
}

func (l *writerLogger) log(level, msg string, keysAndValues []interface{}) {
	fmt.Fprintf(l.w, "%s %s", level, msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(l.w, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	if len(keysAndValues)%2 == 1 {
		fmt.Fprintf(l.w, " %v", keysAndValues[len(keysAndValues)-1])
	}
	fmt.Fprintln(l.w)
}
