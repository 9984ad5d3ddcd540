package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/quotewatch/request"
)

// meterName is the instrumentation scope name for quotewatch metrics.
const meterName = "github.com/xraph/quotewatch"

// Metrics returns middleware that records per-request metrics using the
// global MeterProvider.
//
// Instruments:
//   - quotewatch.request.duration (Float64Histogram): execution time in
//     seconds, with attributes: api_tag, kind, outcome
//   - quotewatch.request.executions (Int64Counter): total executions,
//     with attributes: api_tag, kind, outcome
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// The OTel API returns noop instruments on error.
	duration, _ := meter.Float64Histogram(
		"quotewatch.request.duration",
		metric.WithDescription("Duration of request execution in seconds"),
		metric.WithUnit("s"),
	)
	executions, _ := meter.Int64Counter(
		"quotewatch.request.executions",
		metric.WithDescription("Total number of request executions"),
		metric.WithUnit("{execution}"),
	)

	return func(ctx context.Context, info request.Info, next Handler) request.Outcome {
		start := time.Now()
		outcome := next(ctx)
		elapsed := time.Since(start).Seconds()

		attrs := metric.WithAttributes(
			attribute.String("api_tag", info.APITag),
			attribute.String("kind", string(info.Kind())),
			attribute.String("outcome", outcome.String()),
		)
		duration.Record(ctx, elapsed, attrs)
		executions.Add(ctx, 1, attrs)

		return outcome
	}
}
