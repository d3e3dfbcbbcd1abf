package logger

import "io"

// NullLogger is a logger that does nothing. It is the schema default so
// the ORM stays silent unless a caller opts in with a real logger.
type NullLogger struct {
	level Level
}

// NewNullLogger creates a new null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{level: LevelSilent}
}

func (n *NullLogger) Debug(format string, args ...any) {}
func (n *NullLogger) Info(format string, args ...any)  {}
func (n *NullLogger) Warn(format string, args ...any)  {}
func (n *NullLogger) Error(format string, args ...any) {}

func (n *NullLogger) SetEnabled(enabled bool) {}
func (n *NullLogger) Enabled() bool           { return false }

func (n *NullLogger) SetLevel(level Level) {
	n.level = level
}

func (n *NullLogger) GetLevel() Level {
	return n.level
}

func (n *NullLogger) SetOutput(w io.Writer) {}
