// Package quotewatch is a rate-limited market data dispatch engine.
//
// Recurring producer actions (cron-scheduled) enqueue tagged work items into
// a durable queue. One dispatcher per API tag drains that queue at a bounded
// rate, executes each item against its upstream API, and classifies the
// result into a four-way outcome that decides whether the item is dropped,
// re-enqueued, or re-enqueued with a dispatcher-wide pause.
//
// # Architecture
//
// Each concern lives in its own package and is wired together by the
// quotewatchd daemon:
//
//   - admission: push-based sliding-counter queue primitive
//   - request: work items, outcomes, and the durable queue contract
//   - worker: per-tag dispatcher loop and request executor
//   - cron: concurrent recurring action runner
//   - store: memory, Redis, and SQLite backends
//   - marketdata: concrete requests and producer actions
//
// API tags partition queues, rate limits, and backoff state. Congestion on one
// tag never delays another.
package quotewatch
