package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/datahub/internal/ports"
)

// Format selects how ConsoleLogger encodes entries.
type Format string

const (
	// FormatText writes "15:04:05 [LEVEL] message key=value" lines.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// ParseFormat converts a CLI flag value into a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return FormatText, fmt.Errorf("invalid log format %q: must be text or json", s)
}

// ConsoleLogger writes structured entries to a writer, stderr by default.
type ConsoleLogger struct {
	mu          *sync.Mutex
	out         io.Writer
	level       ports.Level
	format      Format
	fields      []ports.Field
	includeTime bool
	now         func() time.Time
}

// ConsoleLoggerOption configures a ConsoleLogger.
type ConsoleLoggerOption func(*ConsoleLogger)

// WithOutput sets the output writer.
func WithOutput(w io.Writer) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.out = w
	}
}

// WithLevel sets the minimum level (default: Info).
func WithLevel(level ports.Level) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.level = level
	}
}

// WithFormat selects text or JSON output.
func WithFormat(format Format) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.format = format
	}
}

// WithTimestamp toggles the timestamp on each entry.
func WithTimestamp(enabled bool) ConsoleLoggerOption {
	return func(l *ConsoleLogger) {
		l.includeTime = enabled
	}
}

// NewConsoleLogger creates a console logger.
func NewConsoleLogger(opts ...ConsoleLoggerOption) *ConsoleLogger {
	l := &ConsoleLogger{
		mu:          &sync.Mutex{},
		out:         os.Stderr,
		level:       ports.LevelInfo,
		format:      FormatText,
		includeTime: true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Debug logs a debug message.
func (l *ConsoleLogger) Debug(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelDebug, msg, fields)
}

// Info logs an informational message.
func (l *ConsoleLogger) Info(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelInfo, msg, fields)
}

// Warn logs a warning.
func (l *ConsoleLogger) Warn(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelWarn, msg, fields)
}

// Error logs an error.
func (l *ConsoleLogger) Error(ctx context.Context, msg string, fields ...ports.Field) {
	l.log(ctx, ports.LevelError, msg, fields)
}

// With returns a derived logger sharing the writer and its lock.
func (l *ConsoleLogger) With(fields ...ports.Field) ports.Logger {
	merged := make([]ports.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	derived := *l
	derived.fields = merged
	return &derived
}

// Level returns the minimum level.
func (l *ConsoleLogger) Level() ports.Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevel changes the minimum level.
func (l *ConsoleLogger) SetLevel(level ports.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *ConsoleLogger) log(_ context.Context, level ports.Level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	all := make([]ports.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	var line string
	if l.format == FormatJSON {
		line = l.encodeJSON(level, msg, all)
	} else {
		line = l.encodeText(level, msg, all)
	}
	_, _ = fmt.Fprintln(l.out, line)
}

func (l *ConsoleLogger) encodeJSON(level ports.Level, msg string, fields []ports.Field) string {
	entry := make(map[string]interface{}, len(fields)+3)
	if l.includeTime {
		entry["time"] = l.now().UTC().Format(time.RFC3339)
	}
	entry["level"] = level.String()
	entry["msg"] = msg
	for _, f := range fields {
		entry[f.Key] = f.Value
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return l.encodeText(level, msg, append(fields, ports.F("encode_error", err.Error())))
	}
	return string(data)
}

func (l *ConsoleLogger) encodeText(level ports.Level, msg string, fields []ports.Field) string {
	var b strings.Builder
	if l.includeTime {
		b.WriteString(l.now().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] %s", level, msg)

	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(textValue(f.Value))
	}
	return b.String()
}

// textValue quotes values that would otherwise break key=value parsing.
func textValue(v interface{}) string {
	s := fmt.Sprintf("%v", v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

var _ ports.Logger = (*ConsoleLogger)(nil)
