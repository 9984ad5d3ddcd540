package ext

import (
	"context"
	"time"

	"github.com/xraph/quotewatch/request"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Request lifecycle hooks
// ──────────────────────────────────────────────────

// RequestExecuted is called after every execution attempt.
type RequestExecuted interface {
	OnRequestExecuted(ctx context.Context, info request.Info, outcome request.Outcome, elapsed time.Duration) error
}

// RequestRequeued is called after an item is appended back to its queue.
type RequestRequeued interface {
	OnRequestRequeued(ctx context.Context, info request.Info, outcome request.Outcome) error
}

// RequestDropped is called when an item is discarded for good.
type RequestDropped interface {
	OnRequestDropped(ctx context.Context, info request.Info, reason string) error
}

// ──────────────────────────────────────────────────
// Dispatcher and cron hooks
// ──────────────────────────────────────────────────

// DispatcherPaused is called when a tag's dispatcher backs off after a
// rate-limit signal.
type DispatcherPaused interface {
	OnDispatcherPaused(ctx context.Context, tag string, pause time.Duration) error
}

// CronFired is called after a recurring action executes.
type CronFired interface {
	OnCronFired(ctx context.Context, action string, cont bool) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
