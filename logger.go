package segstore

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/hupe1980/segstore/model"
)

// Logger wraps slog.Logger with segstore-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithDataset adds dataset and version fields to the logger.
func (l *Logger) WithDataset(dataset string, version int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", dataset, "version", version),
	}
}

// LogAppend logs an append operation. Range conflicts are expected under
// concurrent producers and logged as warnings.
func (l *Logger) LogAppend(ctx context.Context, r model.KeyRange, res AppendResult, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "append completed",
			"range", r.String(),
			"segment", res.SegmentID.String(),
			"rows", res.RowCount,
		)
	case errors.Is(err, ErrRangeConflict):
		l.WarnContext(ctx, "append conflicted",
			"range", r.String(),
			"error", err,
		)
	default:
		l.ErrorContext(ctx, "append failed",
			"range", r.String(),
			"error", err,
		)
	}
}

// LogScan logs the planning of a scan. Call it on a logger from WithDataset.
func (l *Logger) LogScan(ctx context.Context, segments int, err error) {
	switch {
	case err == nil:
		l.DebugContext(ctx, "scan planned", "segments", segments)
	case errors.Is(err, ErrDatasetNotFound):
		l.DebugContext(ctx, "scan of unknown dataset")
	default:
		l.ErrorContext(ctx, "scan failed", "error", err)
	}
}

// LogRecovery logs the index rebuild at Open.
func (l *Logger) LogRecovery(ctx context.Context, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "recovery failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "recovery completed",
			"segments", segments,
		)
	}
}

// LogDrop logs a DropDataset operation. Call it on a logger from WithDataset.
func (l *Logger) LogDrop(ctx context.Context, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "drop failed", "error", err)
	} else {
		l.InfoContext(ctx, "dataset dropped", "segments", segments)
	}
}
