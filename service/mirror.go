package service

import (
	"context"
	"time"

	"github.com/Jostyn07/Asesoriasth-backend/pkg/logger"
)

// RowAppender is the mirror collaborator boundary. A call either lands the
// whole batch or none of it.
type RowAppender interface {
	AppendRows(ctx context.Context, sheet string, rows [][]string) error
}

// Outcome is the result of one AppendRows invocation after retries.
type Outcome struct {
	Success  bool
	Attempts int
	LastErr  error
}

// MirrorWriter wraps a RowAppender with bounded retry. It is stateless
// across calls: each AppendRows invocation gets a fresh retry budget and
// delays block only the calling goroutine.
type MirrorWriter struct {
	appender    RowAppender
	maxAttempts int
	baseDelay   time.Duration
}

func NewMirrorWriter(appender RowAppender, maxAttempts int, baseDelay time.Duration) *MirrorWriter {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &MirrorWriter{
		appender:    appender,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}
}

// AppendRows attempts the append up to maxAttempts times with linearly
// increasing delay between attempts. It never returns an error past the
// Outcome: the caller decides what a failed mirror write means.
func (w *MirrorWriter) AppendRows(ctx context.Context, sink string, rows [][]string) Outcome {
	var lastErr error
	attempts := 0

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		attempts = attempt
		err := w.appender.AppendRows(ctx, sink, rows)
		if err == nil {
			if attempt > 1 {
				logger.Info(ctx, "mirror append recovered",
					"sink", sink,
					"attempt", attempt,
					"rows", len(rows),
				)
			}
			return Outcome{Success: true, Attempts: attempt}
		}

		lastErr = err
		logger.Warn(ctx, "mirror append failed",
			"sink", sink,
			"attempt", attempt,
			"max_attempts", w.maxAttempts,
			"rows", len(rows),
			"error", err,
		)

		if attempt < w.maxAttempts {
			if !sleepCtx(ctx, time.Duration(attempt)*w.baseDelay) {
				lastErr = ctx.Err()
				break
			}
		}
	}

	logger.Error(ctx, "mirror append exhausted retries",
		"sink", sink,
		"attempts", attempts,
		"error", lastErr,
	)
	return Outcome{Success: false, Attempts: attempts, LastErr: lastErr}
}

// sleepCtx waits for d or until ctx is done. Returns false when cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
