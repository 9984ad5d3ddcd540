package middleware

import (
	"context"

	"github.com/xraph/quotewatch/request"
)

// Handler is the terminal function that executes a request.
type Handler func(ctx context.Context) request.Outcome

// Middleware wraps a Handler with cross-cutting logic. It receives the
// work item being executed and the next handler to call.
type Middleware func(ctx context.Context, info request.Info, next Handler) request.Outcome

// Chain composes middleware into one. The first middleware in the list is
// the outermost wrapper:
//
//	Chain(tracing, recover, timeout) runs tracing → recover → timeout → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, info request.Info, next Handler) request.Outcome {
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) request.Outcome {
				return mw(ctx, info, prev)
			}
		}
		return h(ctx)
	}
}
