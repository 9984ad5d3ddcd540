// Package worker provides the dispatch engine: an Executor that builds and
// runs one work item through middleware and applies its outcome policy, and
// a Dispatcher that drains one API tag's durable queue at a bounded rate.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/quotewatch/ext"
	"github.com/xraph/quotewatch/middleware"
	"github.com/xraph/quotewatch/request"
)

// Executor runs a single work item and applies the outcome policy:
//
//   - Ok: logged at info
//   - Retry, WaitAndRetry: logged at warn, appended back to the queue tail
//   - Fatal: logged at error, dropped
//
// The Dispatcher owns the WaitAndRetry pause; Executor only reports it.
type Executor struct {
	factory    request.Factory
	store      request.Store
	extensions *ext.Registry
	mw         middleware.Middleware
	logger     *slog.Logger
}

// NewExecutor creates an Executor. Panics in the factory-built request or
// in any of mws are recovered and classified Fatal.
func NewExecutor(
	factory request.Factory,
	store request.Store,
	extensions *ext.Registry,
	logger *slog.Logger,
	mws ...middleware.Middleware,
) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if extensions == nil {
		extensions = ext.NewRegistry(logger)
	}
	chain := append([]middleware.Middleware{middleware.Recover(logger)}, mws...)
	return &Executor{
		factory:    factory,
		store:      store,
		extensions: extensions,
		mw:         middleware.Chain(chain...),
		logger:     logger,
	}
}

// Execute builds the request for info, runs it, and applies the outcome.
// A work item that cannot be built is Fatal. Requeues use a context that
// survives cancellation of ctx so an item executed during shutdown is not
// lost.
func (e *Executor) Execute(ctx context.Context, info request.Info) request.Outcome {
	logger := e.logger.With(slog.Any("request", info))

	req, err := e.build(info)
	if err != nil {
		logger.Error("cannot build request, dropping", slog.String("error", err.Error()))
		e.extensions.EmitRequestDropped(ctx, info, "unbuildable")
		return request.Fatal
	}

	start := time.Now()
	outcome := e.mw(ctx, info, func(ctx context.Context) request.Outcome {
		return req.Execute(ctx, logger)
	})
	elapsed := time.Since(start)

	logger.Log(ctx, outcome.Level(), "request executed",
		slog.String("job", req.String()),
		slog.String("outcome", outcome.String()),
		slog.Duration("elapsed", elapsed),
	)
	e.extensions.EmitRequestExecuted(ctx, info, outcome, elapsed)

	switch {
	case outcome.Requeue():
		e.requeue(ctx, info, outcome)
	case outcome == request.Fatal:
		e.extensions.EmitRequestDropped(ctx, info, outcome.String())
	}
	return outcome
}

// Requeue appends info back to its queue without executing it.
func (e *Executor) Requeue(ctx context.Context, info request.Info) error {
	return e.store.EnqueueRequest(context.WithoutCancel(ctx), info)
}

func (e *Executor) requeue(ctx context.Context, info request.Info, outcome request.Outcome) {
	if err := e.Requeue(ctx, info); err != nil {
		e.logger.Error("failed to requeue request",
			slog.Any("request", info),
			slog.String("error", err.Error()),
		)
		return
	}
	e.extensions.EmitRequestRequeued(ctx, info, outcome)
}

// build calls the factory, converting a factory panic into an error.
func (e *Executor) build(info request.Info) (req request.Request, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panic: %v", r)
		}
	}()
	req, err = e.factory.Create(info)
	if err == nil && req == nil {
		err = fmt.Errorf("factory returned no request for %s", info.Kind())
	}
	return req, err
}
