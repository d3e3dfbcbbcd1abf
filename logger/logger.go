// Package logger provides the leveled logging sink consumed by memorm's
// internal components. It never reaches outside the process: no file
// sinks, no network transport, just an interface and two implementations.
package logger

import "io"

// Logger is the leveled sink consumed by ORM internals.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)

	SetEnabled(enabled bool)
	Enabled() bool
	SetLevel(level Level)
	GetLevel() Level
	SetOutput(w io.Writer)
}
