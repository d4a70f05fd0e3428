package plango

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with planner-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithRunID tags every line with the id of a planner run.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithPlanner adds the planner name.
func (l *Logger) WithPlanner(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("planner", name),
	}
}

// WithSpace adds the kind and dimension of the planning space.
func (l *Logger) WithSpace(kind string, dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("space", kind, "dimension", dim),
	}
}

// LogSolve logs the outcome of a solve call.
func (l *Logger) LogSolve(ctx context.Context, stats SolveStats, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "solve failed",
			"iterations", stats.Iterations,
			"duration", stats.Duration,
			"error", err,
		)
	case stats.Solved:
		l.InfoContext(ctx, "solve completed",
			"iterations", stats.Iterations,
			"tree_size", stats.TreeSize,
			"cost", stats.Cost,
			"duration", stats.Duration,
		)
	default:
		l.InfoContext(ctx, "solve exhausted budget without solution",
			"iterations", stats.Iterations,
			"tree_size", stats.TreeSize,
			"duration", stats.Duration,
		)
	}
}

// LogProgress logs periodic progress inside a solve loop.
func (l *Logger) LogProgress(ctx context.Context, iterations, treeSize int, best float64) {
	l.DebugContext(ctx, "solve progress",
		"iterations", iterations,
		"tree_size", treeSize,
		"best", best,
	)
}

// LogRoadmap logs a roadmap construction.
func (l *Logger) LogRoadmap(ctx context.Context, stats RoadmapStats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "roadmap construction failed",
			"vertices", stats.Vertices,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "roadmap constructed",
		"vertices", stats.Vertices,
		"edges", stats.Edges,
		"components", stats.Components,
		"duration", stats.Duration,
	)
}

// LogGoalContract logs a detected goal contract violation.
func (l *Logger) LogGoalContract(ctx context.Context, err *InvalidGoalContractError) {
	l.WarnContext(ctx, "goal contract violated",
		"state", err.State.String(),
		"satisfied", err.Satisfied,
		"distance", err.Distance,
	)
}
