// Package telemetry provides a minimal structured logger for the solver
// packages. It intentionally wraps the standard library's log.Logger rather
// than pulling in a third-party structured-logging framework — see
// SPEC_FULL.md's "Logging" section for why.
package telemetry

import (
	"fmt"
	"log"
	"os"
)

// Logger is a leveled, key-value wrapper around *log.Logger. The zero value
// is not usable; construct with New or NewNoop.
type Logger struct {
	*log.Logger
	enabled bool
}

// New creates a Logger that writes to stderr with a "[cvrptw] " prefix.
func New() *Logger {
	return &Logger{
		Logger:  log.New(os.Stderr, "[cvrptw] ", log.LstdFlags),
		enabled: true,
	}
}

// NewNoop creates a Logger that discards every message. Solvers default to
// this so logging is opt-in.
func NewNoop() *Logger {
	return &Logger{
		Logger:  log.New(os.Stderr, "", 0),
		enabled: false,
	}
}

// Debug logs a debug-level message with alternating key-value pairs.
func (l *Logger) Debug(msg string, kv ...any) {
	l.logWithKV("DEBUG", msg, kv...)
}

// Info logs an info-level message with alternating key-value pairs.
func (l *Logger) Info(msg string, kv ...any) {
	l.logWithKV("INFO", msg, kv...)
}

// Warn logs a warn-level message with alternating key-value pairs.
func (l *Logger) Warn(msg string, kv ...any) {
	l.logWithKV("WARN", msg, kv...)
}

// Error logs an error-level message with alternating key-value pairs.
func (l *Logger) Error(msg string, kv ...any) {
	l.logWithKV("ERROR", msg, kv...)
}

func (l *Logger) logWithKV(level, msg string, kv ...any) {
	if l == nil || !l.enabled {
		return
	}

	output := level + " " + msg
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		output += " " + key + "=" + formatValue(kv[i+1])
	}
	l.Println(output)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case error:
		return val.Error()
	default:
		return fmt.Sprint(val)
	}
}
