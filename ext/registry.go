package ext

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/quotewatch/request"
)

// Named entries pair a hook with the extension name captured at
// registration time.
type entry[H any] struct {
	name string
	hook H
}

// Registry holds registered extensions and dispatches lifecycle events to
// them. Hooks are type-cached at registration so emit calls only visit
// extensions that implement them. Register every extension before the
// dispatchers start; emitting is then safe from any goroutine.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	requestExecuted  []entry[RequestExecuted]
	requestRequeued  []entry[RequestRequeued]
	requestDropped   []entry[RequestDropped]
	dispatcherPaused []entry[DispatcherPaused]
	cronFired        []entry[CronFired]
	shutdown         []entry[Shutdown]
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds an extension. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(RequestExecuted); ok {
		r.requestExecuted = append(r.requestExecuted, entry[RequestExecuted]{name, h})
	}
	if h, ok := e.(RequestRequeued); ok {
		r.requestRequeued = append(r.requestRequeued, entry[RequestRequeued]{name, h})
	}
	if h, ok := e.(RequestDropped); ok {
		r.requestDropped = append(r.requestDropped, entry[RequestDropped]{name, h})
	}
	if h, ok := e.(DispatcherPaused); ok {
		r.dispatcherPaused = append(r.dispatcherPaused, entry[DispatcherPaused]{name, h})
	}
	if h, ok := e.(CronFired); ok {
		r.cronFired = append(r.cronFired, entry[CronFired]{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, entry[Shutdown]{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitRequestExecuted notifies all extensions that implement RequestExecuted.
func (r *Registry) EmitRequestExecuted(ctx context.Context, info request.Info, outcome request.Outcome, elapsed time.Duration) {
	for _, e := range r.requestExecuted {
		if err := e.hook.OnRequestExecuted(ctx, info, outcome, elapsed); err != nil {
			r.logHookError("OnRequestExecuted", e.name, err)
		}
	}
}

// EmitRequestRequeued notifies all extensions that implement RequestRequeued.
func (r *Registry) EmitRequestRequeued(ctx context.Context, info request.Info, outcome request.Outcome) {
	for _, e := range r.requestRequeued {
		if err := e.hook.OnRequestRequeued(ctx, info, outcome); err != nil {
			r.logHookError("OnRequestRequeued", e.name, err)
		}
	}
}

// EmitRequestDropped notifies all extensions that implement RequestDropped.
func (r *Registry) EmitRequestDropped(ctx context.Context, info request.Info, reason string) {
	for _, e := range r.requestDropped {
		if err := e.hook.OnRequestDropped(ctx, info, reason); err != nil {
			r.logHookError("OnRequestDropped", e.name, err)
		}
	}
}

// EmitDispatcherPaused notifies all extensions that implement DispatcherPaused.
func (r *Registry) EmitDispatcherPaused(ctx context.Context, tag string, pause time.Duration) {
	for _, e := range r.dispatcherPaused {
		if err := e.hook.OnDispatcherPaused(ctx, tag, pause); err != nil {
			r.logHookError("OnDispatcherPaused", e.name, err)
		}
	}
}

// EmitCronFired notifies all extensions that implement CronFired.
func (r *Registry) EmitCronFired(ctx context.Context, action string, cont bool) {
	for _, e := range r.cronFired {
		if err := e.hook.OnCronFired(ctx, action, cont); err != nil {
			r.logHookError("OnCronFired", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a hook fails. Hook errors never
// propagate into the dispatch loop.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
