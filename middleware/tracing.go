package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xraph/quotewatch/request"
)

// tracerName is the instrumentation scope name for quotewatch tracing.
const tracerName = "github.com/xraph/quotewatch"

// Tracing returns middleware that wraps request execution in a span from
// the global TracerProvider. Without a configured provider the noop tracer
// makes this a pass-through.
//
// Span attributes: quotewatch.request.id, quotewatch.request.kind,
// quotewatch.api_tag, quotewatch.outcome. Fatal outcomes set codes.Error.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, info request.Info, next Handler) request.Outcome {
		ctx, span := tracer.Start(ctx, "quotewatch.request.execute",
			trace.WithAttributes(
				attribute.String("quotewatch.request.id", info.ID.String()),
				attribute.String("quotewatch.request.kind", string(info.Kind())),
				attribute.String("quotewatch.api_tag", info.APITag),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		outcome := next(ctx)
		span.SetAttributes(attribute.String("quotewatch.outcome", outcome.String()))
		if outcome == request.Fatal {
			span.SetStatus(codes.Error, "request failed permanently")
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return outcome
	}
}
