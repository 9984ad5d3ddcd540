// Package observability provides an OpenTelemetry metrics extension for
// quotewatch. The MetricsExtension implements lifecycle hooks to record
// counters for execution outcomes, requeues, drops, dispatcher pauses, and
// recurring action fires.
//
// For per-execution tracing and timing, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
