package flowgo

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with flowgo-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
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

// WithPartitions adds a partition-count field to the logger.
func (l *Logger) WithPartitions(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("partitions", n),
	}
}

// WithStage adds a dataflow stage name to the logger.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", stage),
	}
}

// LogStage logs the completion of a dataflow stage.
func (l *Logger) LogStage(ctx context.Context, stage string, elements int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stage failed",
			"stage", stage,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "stage completed",
			"stage", stage,
			"elements", elements,
		)
	}
}

// LogSpill logs a partition materialization.
func (l *Logger) LogSpill(ctx context.Context, name string, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "spill failed",
			"partition", name,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "partition spilled",
			"partition", name,
			"bytes", bytes,
		)
	}
}
