package geoshard

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with geoshard-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithStorageLevel adds a storage_level field to the logger.
func (l *Logger) WithStorageLevel(level int) *Logger {
	return &Logger{
		Logger: l.Logger.With("storage_level", level),
	}
}

// LogEnumeration logs a cell enumeration pass.
func (l *Logger) LogEnumeration(ctx context.Context, cells int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cell enumeration failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cell enumeration completed",
			"cells", cells,
			"elapsed", elapsed,
		)
	}
}

// LogScoring logs a scoring pass over the user stream.
func (l *Logger) LogScoring(ctx context.Context, totalLoad int64, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "cell scoring failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cell scoring completed",
			"total_load", totalLoad,
			"elapsed", elapsed,
		)
	}
}

// LogPartition logs the capacity search result.
func (l *Logger) LogPartition(ctx context.Context, shards, candidates int, stdDev float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "shard partitioning failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "shard partitioning completed",
			"shards", shards,
			"candidates", candidates,
			"std_dev", stdDev,
		)
	}
}

// LogSnapshot logs a shard-table snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"name", name,
		)
	}
}
