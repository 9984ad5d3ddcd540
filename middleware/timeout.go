package middleware

import (
	"context"
	"time"

	"github.com/xraph/quotewatch/request"
)

// Timeout returns middleware that cancels the request context after d.
// A non-positive d disables the deadline.
func Timeout(d time.Duration) Middleware {
	return func(ctx context.Context, _ request.Info, next Handler) request.Outcome {
		if d <= 0 {
			return next(ctx)
		}
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return next(ctx)
	}
}
