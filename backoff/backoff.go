// Package backoff computes how long a dispatcher pauses after an upstream
// API signals rate limiting. All strategies are stateless and safe for
// concurrent use; the caller tracks the streak of consecutive signals.
package backoff

import (
	"math"
	"math/rand/v2"
	"time"
)

// Strategy computes the extra pause applied after a rate-limit signal.
type Strategy interface {
	// Pause returns the pause for the n-th consecutive rate-limit signal
	// (1-indexed). Streak 1 is the first signal after a clean batch.
	Pause(streak int) time.Duration
}

// ──────────────────────────────────────────────────
// Constant
// ──────────────────────────────────────────────────

// Constant pauses for the same duration no matter how long the streak is.
type Constant struct {
	Interval time.Duration
}

// NewConstant creates a constant pause strategy.
func NewConstant(interval time.Duration) *Constant {
	return &Constant{Interval: interval}
}

// Pause returns the fixed interval.
func (c *Constant) Pause(_ int) time.Duration {
	return c.Interval
}

// ──────────────────────────────────────────────────
// Exponential
// ──────────────────────────────────────────────────

// Exponential doubles the pause for each consecutive signal.
// Pause = min(Interval * 2^(streak-1), Max).
type Exponential struct {
	Interval time.Duration
	Max      time.Duration
}

// NewExponential creates an escalating pause strategy.
func NewExponential(interval, maxPause time.Duration) *Exponential {
	return &Exponential{Interval: interval, Max: maxPause}
}

// Pause returns Interval * 2^(streak-1), capped at Max. A streak below 1
// is treated as 1.
func (e *Exponential) Pause(streak int) time.Duration {
	if streak < 1 {
		streak = 1
	}
	d := float64(e.Interval) * math.Pow(2, float64(streak-1))
	if e.Max > 0 && d > float64(e.Max) {
		return e.Max
	}
	return time.Duration(d)
}

// ──────────────────────────────────────────────────
// Jitter
// ──────────────────────────────────────────────────

// Jitter stretches another strategy's pause by a random share in
// [0, Fraction]. It only ever lengthens the pause, so the wrapped
// strategy's value stays a lower bound.
type Jitter struct {
	Base     Strategy
	Fraction float64
}

// WithJitter wraps base with up to fraction extra random pause.
func WithJitter(base Strategy, fraction float64) *Jitter {
	return &Jitter{Base: base, Fraction: fraction}
}

// Pause returns the base pause plus a random extra.
func (j *Jitter) Pause(streak int) time.Duration {
	d := j.Base.Pause(streak)
	if j.Fraction <= 0 {
		return d
	}
	extra := rand.Float64() * j.Fraction * float64(d) //nolint:gosec // jitter intentionally uses non-crypto rand
	return d + time.Duration(extra)
}

// ──────────────────────────────────────────────────
// Default
// ──────────────────────────────────────────────────

// Default returns the pause strategy used by dispatchers: exactly one
// dispatch interval per rate-limit signal.
func Default(interval time.Duration) Strategy {
	return NewConstant(interval)
}
