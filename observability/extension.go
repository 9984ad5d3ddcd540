package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/quotewatch/ext"
	"github.com/xraph/quotewatch/request"
)

// Compile-time interface checks.
var (
	_ ext.Extension        = (*MetricsExtension)(nil)
	_ ext.RequestExecuted  = (*MetricsExtension)(nil)
	_ ext.RequestRequeued  = (*MetricsExtension)(nil)
	_ ext.RequestDropped   = (*MetricsExtension)(nil)
	_ ext.DispatcherPaused = (*MetricsExtension)(nil)
	_ ext.CronFired        = (*MetricsExtension)(nil)
)

const meterName = "github.com/xraph/quotewatch/observability"

// MetricsExtension records dispatch lifecycle counters through OpenTelemetry.
// Register it with an ext.Registry to track execution outcomes, requeues,
// drops, and backoff pauses per API tag, plus recurring action fires.
type MetricsExtension struct {
	RequestExecuted  metric.Int64Counter
	RequestRequeued  metric.Int64Counter
	RequestDropped   metric.Int64Counter
	DispatcherPaused metric.Int64Counter
	PauseSeconds     metric.Float64Counter
	CronFired        metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension on the global MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the provided
// meter. Instrument creation errors fall back to noop instruments.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	executed, _ := meter.Int64Counter("quotewatch.request.outcomes",
		metric.WithDescription("Request execution attempts by outcome"))
	requeued, _ := meter.Int64Counter("quotewatch.request.requeued",
		metric.WithDescription("Items appended back to their queue"))
	dropped, _ := meter.Int64Counter("quotewatch.request.dropped",
		metric.WithDescription("Items discarded permanently"))
	paused, _ := meter.Int64Counter("quotewatch.dispatcher.paused",
		metric.WithDescription("Dispatcher backoff pauses"))
	pauseSeconds, _ := meter.Float64Counter("quotewatch.dispatcher.pause_duration",
		metric.WithDescription("Total time spent in backoff pauses"),
		metric.WithUnit("s"))
	fired, _ := meter.Int64Counter("quotewatch.cron.fired",
		metric.WithDescription("Recurring action executions"))

	return &MetricsExtension{
		RequestExecuted:  executed,
		RequestRequeued:  requeued,
		RequestDropped:   dropped,
		DispatcherPaused: paused,
		PauseSeconds:     pauseSeconds,
		CronFired:        fired,
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnRequestExecuted implements ext.RequestExecuted.
func (m *MetricsExtension) OnRequestExecuted(ctx context.Context, info request.Info, outcome request.Outcome, _ time.Duration) error {
	m.RequestExecuted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api_tag", info.APITag),
		attribute.String("outcome", outcome.String()),
	))
	return nil
}

// OnRequestRequeued implements ext.RequestRequeued.
func (m *MetricsExtension) OnRequestRequeued(ctx context.Context, info request.Info, _ request.Outcome) error {
	m.RequestRequeued.Add(ctx, 1, metric.WithAttributes(attribute.String("api_tag", info.APITag)))
	return nil
}

// OnRequestDropped implements ext.RequestDropped.
func (m *MetricsExtension) OnRequestDropped(ctx context.Context, info request.Info, reason string) error {
	m.RequestDropped.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api_tag", info.APITag),
		attribute.String("reason", reason),
	))
	return nil
}

// OnDispatcherPaused implements ext.DispatcherPaused.
func (m *MetricsExtension) OnDispatcherPaused(ctx context.Context, tag string, pause time.Duration) error {
	attrs := metric.WithAttributes(attribute.String("api_tag", tag))
	m.DispatcherPaused.Add(ctx, 1, attrs)
	m.PauseSeconds.Add(ctx, pause.Seconds(), attrs)
	return nil
}

// OnCronFired implements ext.CronFired.
func (m *MetricsExtension) OnCronFired(ctx context.Context, action string, _ bool) error {
	m.CronFired.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
	return nil
}
