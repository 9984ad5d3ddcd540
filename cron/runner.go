package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xraph/quotewatch/loop"
)

// Emitter emits cron lifecycle events.
// ext.Registry satisfies this interface via EmitCronFired.
type Emitter interface {
	EmitCronFired(ctx context.Context, action string, cont bool)
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithClock overrides the time source. The runner re-reads it after every
// wake, so a coarse or early timer never fires an action ahead of time.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// WithEmitter sets the hook emitter notified after every activation.
func WithEmitter(e Emitter) RunnerOption {
	return func(r *Runner) { r.emitter = e }
}

// Runner owns a fixed set of actions and runs each on its own loop. One
// action's long execution never delays another's schedule.
type Runner struct {
	actions []Action
	emitter Emitter
	now     func() time.Time
	logger  *slog.Logger
}

// NewRunner creates a Runner for actions.
func NewRunner(actions []Action, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		actions: actions,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts every action loop and returns once all of them have ended:
// each because its schedule ran out, the action asked to stop, or ctx was
// cancelled. It always returns nil; loop failures are logged.
func (r *Runner) Run(ctx context.Context) error {
	var g errgroup.Group
	for _, a := range r.actions {
		g.Go(func() error {
			loop.Supervise(ctx, r.logger, "cron:"+a.Name(), func(ctx context.Context) error {
				return r.runAction(ctx, a)
			})
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) runAction(ctx context.Context, a Action) error {
	logger := r.logger.With(slog.String("action", a.Name()))
	sched := a.Schedule()

	for {
		next := sched.Next(r.now())
		if next.IsZero() {
			logger.Warn("no next occurrence, stopping action")
			return nil
		}
		logger.Debug("next occurrence", slog.Time("at", next))

		if !loop.SleepUntil(ctx, next, r.now) {
			return ctx.Err()
		}

		cont, err := r.execute(ctx, a)
		if err != nil {
			logger.Error("cron action failed", slog.String("error", err.Error()))
			cont = true
		}
		if r.emitter != nil {
			r.emitter.EmitCronFired(ctx, a.Name(), cont)
		}
		if !cont {
			logger.Info("cron action signalled end")
			return nil
		}
	}
}

// execute runs one activation, converting a panic into an error.
func (r *Runner) execute(ctx context.Context, a Action) (cont bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			cont, err = true, fmt.Errorf("panic: %v", p)
		}
	}()
	return a.Execute(ctx)
}
