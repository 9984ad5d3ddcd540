package request

import "log/slog"

// Outcome classifies one execution attempt and decides what the dispatcher
// does with the item afterwards.
type Outcome int

const (
	// Ok means the item is done.
	Ok Outcome = iota
	// Retry re-appends the item to the tail of its queue.
	Retry
	// WaitAndRetry re-appends the item and pauses the whole dispatcher for
	// one extra interval. Used when the upstream API rejects for rate.
	WaitAndRetry
	// Fatal drops the item permanently.
	Fatal
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Ok:
		return "ok"
	case Retry:
		return "retry"
	case WaitAndRetry:
		return "wait_and_retry"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Requeue reports whether the item goes back on its queue.
func (o Outcome) Requeue() bool {
	return o == Retry || o == WaitAndRetry
}

// Level is the log level an outcome is reported at.
func (o Outcome) Level() slog.Level {
	switch o {
	case Ok:
		return slog.LevelInfo
	case Retry, WaitAndRetry:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
