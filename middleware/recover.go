package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/xraph/quotewatch/request"
)

// Recover returns middleware that turns a panic in the chain into a Fatal
// outcome, logged with its stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, info request.Info, next Handler) (outcome request.Outcome) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("request panicked",
					slog.Any("request", info),
					slog.Any("panic", r),
					slog.String("stack", string(debug.Stack())),
				)
				outcome = request.Fatal
			}
		}()
		return next(ctx)
	}
}
