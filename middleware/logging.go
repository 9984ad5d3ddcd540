package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/xraph/quotewatch/request"
)

// Logging returns middleware that logs request start and elapsed time at
// debug level. Outcomes themselves are reported by the dispatcher.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, info request.Info, next Handler) request.Outcome {
		logger.Debug("request started", slog.Any("request", info))

		start := time.Now()
		outcome := next(ctx)

		logger.Debug("request returned",
			slog.Any("request", info),
			slog.String("outcome", outcome.String()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return outcome
	}
}
