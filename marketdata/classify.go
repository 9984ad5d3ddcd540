package marketdata

import (
	"context"
	"errors"
	"log/slog"

	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/upstream"
)

// classify maps an upstream call failure to an outcome. A call cut short
// by shutdown is retried rather than dropped.
func classify(ctx context.Context, logger *slog.Logger, err error, what string) request.Outcome {
	switch {
	case upstream.IsRateLimited(err):
		logger.Warn("rate limited by upstream, wait and retry",
			slog.String("call", what),
			slog.String("error", err.Error()),
		)
		return request.WaitAndRetry
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		logger.Warn("upstream call cancelled, retry",
			slog.String("call", what),
		)
		return request.Retry
	default:
		logger.Error("upstream call failed",
			slog.String("call", what),
			slog.String("error", err.Error()),
		)
		return request.Fatal
	}
}
