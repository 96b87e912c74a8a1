package meshrecon

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with meshrecon-specific context.
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

// WithStage adds a stage field to the logger.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{
		Logger: l.Logger.With("stage", stage),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogStage logs the end of a pipeline stage.
func (l *Logger) LogStage(ctx context.Context, stage string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "stage failed",
			"stage", stage,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "stage completed",
			"stage", stage,
			"duration", duration,
		)
	}
}

// LogCleanup logs the faces removed and holes closed by mesh repair.
func (l *Logger) LogCleanup(ctx context.Context, dangling, contour, holes int) {
	l.InfoContext(ctx, "mesh cleaned",
		"dangling_faces", dangling,
		"contour_faces", contour,
		"holes_filled", holes,
	)
}

// LogReduction logs an edge collapse run.
func (l *Logger) LogReduction(ctx context.Context, requested, performed, faces int) {
	if performed < requested {
		l.WarnContext(ctx, "reduction ran out of collapsable edges",
			"requested", requested,
			"collapses", performed,
			"faces", faces,
		)
	} else {
		l.InfoContext(ctx, "reduction completed",
			"collapses", performed,
			"faces", faces,
		)
	}
}

// LogReconstruct logs the outcome of a full reconstruction.
func (l *Logger) LogReconstruct(ctx context.Context, stats Stats, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "reconstruction failed",
			"points", stats.Points,
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "reconstruction completed",
			"points", stats.Points,
			"voxel_size", stats.VoxelSize,
			"vertices", stats.Vertices,
			"faces", stats.Faces,
			"clusters", stats.Clusters,
			"duration", duration,
		)
	}
}
