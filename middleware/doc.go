// Package middleware provides composable middleware around request execution.
//
// A [Middleware] wraps the call that executes one work item and sees the
// [request.Outcome] it produced. Middleware are composed with [Chain] and
// applied right-to-left: the first middleware in the slice is the outermost
// wrapper.
//
//	// tracing → recover → handler
//	chain := middleware.Chain(middleware.Tracing(), middleware.Recover(logger))
//
// # Built-in Middleware
//
//   - [Recover] turns a panic into a Fatal outcome
//   - [Logging] logs start and elapsed time at debug level
//   - [Timeout] bounds execution with a context deadline
//   - [Tracing] wraps execution in an OpenTelemetry span
//   - [Metrics] records per-tag duration and outcome counters
//
// Middleware MUST call next to continue the chain unless intentionally
// short-circuiting.
package middleware
