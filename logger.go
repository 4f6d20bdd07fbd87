package ewah

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with ewah-specific context.
// This provides structured logging with consistent field names.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithName adds a bitmap name field to the logger.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("name", name),
	}
}

// WithOperation adds an operation field to the logger.
func (l *Logger) WithOperation(op string) *Logger {
	return &Logger{
		Logger: l.Logger.With("op", op),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogAggregate logs the strategy chosen for an n-ary aggregation.
func (l *Logger) LogAggregate(op string, operands int, strategy string) {
	l.Debug("aggregation planned",
		"op", op,
		"operands", operands,
		"strategy", strategy,
	)
}

// LogSave logs a bitmap save.
func (l *Logger) LogSave(ctx context.Context, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "save completed",
			"name", name,
			"bytes", bytes,
		)
	}
}

// LogLoad logs a bitmap load.
func (l *Logger) LogLoad(ctx context.Context, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "load completed",
			"name", name,
			"bytes", bytes,
		)
	}
}

// LogBulk logs a bulk save or load.
func (l *Logger) LogBulk(ctx context.Context, op string, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "bulk operation completed with failures",
			"op", op,
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "bulk operation completed",
			"op", op,
			"count", count,
		)
	}
}

// LogCommit logs a catalog commit.
func (l *Logger) LogCommit(ctx context.Context, catalog string, entries int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "commit failed",
			"catalog", catalog,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "catalog committed",
			"catalog", catalog,
			"entries", entries,
		)
	}
}
