package wordvec

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with wordvec-specific helpers so builder and
// index operations log with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, word string, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"word", word,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"word", word,
			"dimension", dimension,
		)
	}
}

// LogCompile logs a compile operation.
func (l *Logger) LogCompile(ctx context.Context, path string, entries int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "compile failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "compile completed",
			"path", path,
			"entries", entries,
			"duration", duration,
		)
	}
}

// LogOpen logs an index open operation.
func (l *Logger) LogOpen(ctx context.Context, path string, entries, dimension int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "open failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index opened",
			"path", path,
			"entries", entries,
			"dimension", dimension,
		)
	}
}
