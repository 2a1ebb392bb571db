package vamana

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with index-specific context.
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
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithVariant adds the build variant to the logger.
func (l *Logger) WithVariant(variant Variant) *Logger {
	return &Logger{
		Logger: l.Logger.With("variant", variant.String()),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuild logs the end of a build.
func (l *Logger) LogBuild(ctx context.Context, variant Variant, nodes int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build failed",
			"variant", variant.String(),
			"nodes", nodes,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build completed",
			"variant", variant.String(),
			"nodes", nodes,
			"elapsed", elapsed,
		)
	}
}

// LogBuildProgress logs how many permutation steps are done.
func (l *Logger) LogBuildProgress(ctx context.Context, variant Variant, done, total int) {
	l.InfoContext(ctx, "build progress",
		"variant", variant.String(),
		"done", done,
		"total", total,
	)
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound, visited int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
			"visited", visited,
		)
	}
}

// LogSave logs a graph save.
func (l *Logger) LogSave(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "graph saved",
			"name", name,
		)
	}
}

// LogLoad logs a graph load.
func (l *Logger) LogLoad(ctx context.Context, name string, nodes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "graph load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "graph loaded",
			"name", name,
			"nodes", nodes,
		)
	}
}
