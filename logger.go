package hikmeans

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with hikmeans-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithTree adds the tree shape to the logger.
func (l *Logger) WithTree(dim, k, depth int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dim", dim, "k", k, "depth", depth),
	}
}

// LogTrain logs a training run.
func (l *Logger) LogTrain(ctx context.Context, n, nodes int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "train failed",
			"points", n,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "train completed",
			"points", n,
			"nodes", nodes,
			"elapsed", elapsed,
		)
	}
}

// LogPush logs a push of n vectors.
func (l *Logger) LogPush(ctx context.Context, n int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "push failed",
			"count", n,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "push completed",
			"count", n,
		)
	}
}

// LogProgress logs the completed fraction of the branches below a node at level.
func (l *Logger) LogProgress(ctx context.Context, level int, fraction float64) {
	l.InfoContext(ctx, "branch completed",
		"level", level,
		"percent", float64(int(fraction*1000+0.5))/10,
	)
}

// LogSave logs a save to a blob store.
func (l *Logger) LogSave(ctx context.Context, name string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "tree saved",
			"name", name,
			"bytes", size,
		)
	}
}

// LogLoad logs a load from a blob store.
func (l *Logger) LogLoad(ctx context.Context, name string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "tree loaded",
			"name", name,
			"bytes", size,
		)
	}
}
