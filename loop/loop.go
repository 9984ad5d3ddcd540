// Package loop provides the run-loop supervisor and cancellable sleep shared
// by every long-running quotewatch loop (dispatchers, cron actions).
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"
)

// Sleep suspends for d or until ctx is cancelled. It reports whether the
// full duration elapsed. A non-positive d returns immediately with the
// context state.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// SleepUntil suspends until the wall clock reaches at, re-checking the
// clock after every wake. It reports false if ctx is cancelled first.
func SleepUntil(ctx context.Context, at time.Time, now func() time.Time) bool {
	for {
		remaining := at.Sub(now())
		if remaining <= 0 {
			return ctx.Err() == nil
		}
		if !Sleep(ctx, remaining) {
			return false
		}
	}
}

// Supervise runs fn under a supervisor that logs its start and end, and
// recovers and logs any panic. Context cancellation is a clean exit. The
// supervisor never panics and never returns fn's error; failures are only
// visible in the log.
func Supervise(ctx context.Context, logger *slog.Logger, name string, fn func(context.Context) error) {
	logger = logger.With(slog.String("loop", name))
	logger.Info("loop started")

	err := run(ctx, fn)
	switch {
	case err == nil, errors.Is(err, context.Canceled) && ctx.Err() != nil:
		logger.Info("loop finished")
	default:
		logger.Error("loop failed", slog.String("error", err.Error()))
	}
}

func run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}
