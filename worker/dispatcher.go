package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/quotewatch/backoff"
	"github.com/xraph/quotewatch/ext"
	"github.com/xraph/quotewatch/loop"
	"github.com/xraph/quotewatch/request"
)

// ErrInvalidDispatcher is returned by NewDispatcher for a bad configuration.
var ErrInvalidDispatcher = errors.New("worker: invalid dispatcher configuration")

// Dispatcher drains one API tag's queue. Each iteration dequeues at most
// MaxPerInterval items, executes them in order, then sleeps one interval.
// A WaitAndRetry outcome pauses the loop for one more interval (or what the
// backoff strategy says) right after that item. Dispatchers for different
// tags share nothing but the store.
type Dispatcher struct {
	tag            string
	store          request.Store
	executor       *Executor
	extensions     *ext.Registry
	maxPerInterval int
	interval       time.Duration
	backoff        backoff.Strategy
	logger         *slog.Logger

	// streak counts consecutive iterations with a rate-limit signal.
	streak int
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithInterval sets the dispatch cadence.
func WithInterval(d time.Duration) DispatcherOption {
	return func(p *Dispatcher) { p.interval = d }
}

// WithMaxPerInterval sets how many items are dequeued per iteration.
func WithMaxPerInterval(n int) DispatcherOption {
	return func(p *Dispatcher) { p.maxPerInterval = n }
}

// WithBackoff sets the pause strategy for WaitAndRetry outcomes. The
// default pauses exactly one interval.
func WithBackoff(s backoff.Strategy) DispatcherOption {
	return func(p *Dispatcher) { p.backoff = s }
}

// WithExtensions sets the lifecycle hook registry.
func WithExtensions(r *ext.Registry) DispatcherOption {
	return func(p *Dispatcher) { p.extensions = r }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(p *Dispatcher) { p.logger = l }
}

// NewDispatcher creates a Dispatcher for tag. Defaults: one item per
// minute, constant one-interval backoff.
func NewDispatcher(tag string, store request.Store, executor *Executor, opts ...DispatcherOption) (*Dispatcher, error) {
	d := &Dispatcher{
		tag:            tag,
		store:          store,
		executor:       executor,
		maxPerInterval: 1,
		interval:       time.Minute,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	switch {
	case tag == "":
		return nil, fmt.Errorf("%w: empty tag", ErrInvalidDispatcher)
	case d.maxPerInterval < 1:
		return nil, fmt.Errorf("%w: %s: max per interval must be >= 1, got %d", ErrInvalidDispatcher, tag, d.maxPerInterval)
	case d.interval <= 0:
		return nil, fmt.Errorf("%w: %s: interval must be positive, got %s", ErrInvalidDispatcher, tag, d.interval)
	}

	if d.backoff == nil {
		d.backoff = backoff.Default(d.interval)
	}
	if d.extensions == nil {
		d.extensions = ext.NewRegistry(d.logger)
	}
	d.logger = d.logger.With(slog.String("api_tag", tag))
	return d, nil
}

// Tag returns the API tag this dispatcher drains.
func (d *Dispatcher) Tag() string { return d.tag }

// Run loops until ctx is cancelled. Cancellation during a sleep returns
// promptly without dequeuing again.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("dispatcher started",
		slog.Int("max_per_interval", d.maxPerInterval),
		slog.Duration("interval", d.interval),
	)

	for ctx.Err() == nil {
		d.Iterate(ctx)
		if !loop.Sleep(ctx, d.interval) {
			break
		}
	}

	d.logger.Info("dispatcher stopped")
	return nil
}

// Iterate runs one dequeue-execute pass, including any WaitAndRetry pause,
// but not the trailing interval sleep. It reports how many items were
// executed. Items dequeued but not yet executed when ctx is cancelled are
// appended back to the queue.
func (d *Dispatcher) Iterate(ctx context.Context) int {
	infos, err := d.store.DequeueRequests(ctx, d.tag, d.maxPerInterval)
	if err != nil {
		if ctx.Err() != nil {
			d.logger.Debug("dequeue cancelled", slog.String("error", err.Error()))
		} else {
			d.logger.Error("dequeue failed", slog.String("error", err.Error()))
		}
	}
	if len(infos) == 0 {
		d.streak = 0
		return 0
	}

	limited := false
	executed := 0
	for i, info := range infos {
		if ctx.Err() != nil {
			d.restore(ctx, infos[i:])
			break
		}

		outcome := d.executor.Execute(ctx, info)
		executed++

		if outcome == request.WaitAndRetry {
			limited = true
			if !d.pause(ctx) {
				d.restore(ctx, infos[i+1:])
				break
			}
		}
	}

	if !limited {
		d.streak = 0
	}
	return executed
}

// pause backs off after a rate-limit signal. It reports false if ctx was
// cancelled during the pause.
func (d *Dispatcher) pause(ctx context.Context) bool {
	d.streak++
	pause := d.backoff.Pause(d.streak)

	d.logger.Warn("upstream rate limited, pausing dispatcher",
		slog.Duration("pause", pause),
		slog.Int("streak", d.streak),
	)
	d.extensions.EmitDispatcherPaused(ctx, d.tag, pause)
	return loop.Sleep(ctx, pause)
}

// restore puts back items that were dequeued but never executed.
func (d *Dispatcher) restore(ctx context.Context, infos []request.Info) {
	for _, info := range infos {
		if err := d.executor.Requeue(ctx, info); err != nil {
			d.logger.Error("failed to restore unexecuted request",
				slog.Any("request", info),
				slog.String("error", err.Error()),
			)
		}
	}
	if len(infos) > 0 {
		d.logger.Info("restored unexecuted requests", slog.Int("count", len(infos)))
	}
}
