// Package logging implements ports.Logger: a ConsoleLogger writing text or
// JSON lines and a NopLogger for library callers that do not want output.
package logging

import (
	"context"

	"github.com/felixgeelhaar/datahub/internal/ports"
)

// NopLogger discards every entry.
type NopLogger struct {
	level ports.Level
}

// NewNopLogger creates a no-op logger.
func NewNopLogger() *NopLogger {
	return &NopLogger{level: ports.LevelInfo}
}

// Debug does nothing.
func (l *NopLogger) Debug(_ context.Context, _ string, _ ...ports.Field) {}

// Info does nothing.
func (l *NopLogger) Info(_ context.Context, _ string, _ ...ports.Field) {}

// Warn does nothing.
func (l *NopLogger) Warn(_ context.Context, _ string, _ ...ports.Field) {}

// Error does nothing.
func (l *NopLogger) Error(_ context.Context, _ string, _ ...ports.Field) {}

// With returns l.
func (l *NopLogger) With(_ ...ports.Field) ports.Logger {
	return l
}

// Level returns the configured level.
func (l *NopLogger) Level() ports.Level {
	return l.level
}

// SetLevel sets the level.
func (l *NopLogger) SetLevel(level ports.Level) {
	l.level = level
}

var _ ports.Logger = (*NopLogger)(nil)
