package logger

import (
	"context"
	"log/slog"
	"time"
)

type PerformanceLogger struct {
	contextLogger *ContextLogger
}

type Timer struct {
	ctx        context.Context
	operation  string
	startTime  time.Time
	perfLogger *PerformanceLogger
}

func NewPerformanceLogger(logger *slog.Logger) *PerformanceLogger {
	return &PerformanceLogger{
		contextLogger: NewContextLogger(logger),
	}
}

// StartTimer creates a new timer for measuring operation performance
func (pl *PerformanceLogger) StartTimer(ctx context.Context, operation string) *Timer {
	return &Timer{
		ctx:        ctx,
		operation:  operation,
		startTime:  time.Now(),
		perfLogger: pl,
	}
}

// End completes the timer, logs the duration and returns it.
func (t *Timer) End() time.Duration {
	duration := time.Since(t.startTime)
	t.perfLogger.contextLogger.LogDuration(t.ctx, t.operation, duration)
	return duration
}

// EndWithError completes the timer and logs the error with the elapsed time.
func (t *Timer) EndWithError(err error) time.Duration {
	duration := time.Since(t.startTime)
	t.perfLogger.contextLogger.WithContext(t.ctx).Error("operation failed",
		"operation", t.operation,
		"duration_ms", duration.Milliseconds(),
		"error", err,
	)
	return duration
}

// LogSlowOperation logs a warning when an operation exceeds a threshold
func (pl *PerformanceLogger) LogSlowOperation(ctx context.Context, operation string, duration, threshold time.Duration) {
	if duration > threshold {
		pl.contextLogger.WithContext(ctx).Warn("slow operation detected",
			"operation", operation,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", threshold.Milliseconds(),
		)
	}
}
