package quotewatch

import (
	"errors"
	"fmt"
	"time"

	"github.com/xraph/quotewatch/cron"
)

// APIConfig configures one upstream API and the dispatcher draining its tag.
type APIConfig struct {
	// BaseURL is the root URL requests are resolved against.
	BaseURL string

	// APIKey authenticates requests. Optional for APIs that allow
	// anonymous access.
	APIKey string

	// MaxRequestsPerInterval caps how many work items the tag's
	// dispatcher executes per Interval. Must be at least 1.
	MaxRequestsPerInterval int
}

// Schedules holds the cron expressions of the recurring producer actions.
// Standard 5-field expressions and descriptors ("@daily", "@every 1h") are
// accepted.
type Schedules struct {
	QuoteHistory  string
	QuoteSnapshot string
	Trackers      string
	Cleanup       string
}

// Config holds configuration for the quotewatch daemon.
type Config struct {
	// Interval is the dispatcher cadence. One batch is drained per
	// interval and a WaitAndRetry outcome pauses for one more.
	Interval time.Duration

	// RequestTimeout bounds a single request execution.
	RequestTimeout time.Duration

	Polygon APIConfig
	Messari APIConfig

	// QuoteLimit is the Messari asset page size.
	QuoteLimit int

	// QuoteHistoryDays is how far back daily history is synced and kept.
	QuoteHistoryDays int

	// MaxHourlyQuotes is the number of hourly quotes retained per symbol.
	MaxHourlyQuotes int

	Schedules Schedules
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:       1 * time.Minute,
		RequestTimeout: 30 * time.Second,
		Polygon: APIConfig{
			BaseURL:                "https://api.polygon.io/v2/",
			MaxRequestsPerInterval: 5,
		},
		Messari: APIConfig{
			BaseURL:                "https://data.messari.io/api/v1/",
			MaxRequestsPerInterval: 20,
		},
		QuoteLimit:       200,
		QuoteHistoryDays: 100,
		MaxHourlyQuotes:  24,
		Schedules: Schedules{
			QuoteHistory:  "@daily",
			QuoteSnapshot: "@hourly",
			Trackers:      "0 2 * * *",
			Cleanup:       "30 3 * * *",
		},
	}
}

// APIConfigs returns the per-tag API configuration keyed by tag.
func (c Config) APIConfigs() map[string]APIConfig {
	return map[string]APIConfig{
		TagPolygon: c.Polygon,
		TagMessari: c.Messari,
	}
}

// Validate reports every problem with the configuration. The returned error
// wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Interval <= 0 {
		invalid("interval must be positive, got %s", c.Interval)
	}
	if c.RequestTimeout < 0 {
		invalid("request timeout must not be negative, got %s", c.RequestTimeout)
	}

	for tag, api := range c.APIConfigs() {
		if api.BaseURL == "" {
			invalid("%s base url is required", tag)
		}
		if api.MaxRequestsPerInterval < 1 {
			invalid("%s max requests per interval must be >= 1, got %d", tag, api.MaxRequestsPerInterval)
		}
	}
	if c.Polygon.APIKey == "" {
		invalid("%s api key is required", TagPolygon)
	}

	if c.QuoteLimit < 1 || c.QuoteLimit > 500 {
		invalid("quote limit must be in [1, 500], got %d", c.QuoteLimit)
	}
	if c.QuoteHistoryDays < 1 || c.QuoteHistoryDays > 1000 {
		invalid("quote history days must be in [1, 1000], got %d", c.QuoteHistoryDays)
	}
	if c.MaxHourlyQuotes < 1 || c.MaxHourlyQuotes > 100 {
		invalid("max hourly quotes must be in [1, 100], got %d", c.MaxHourlyQuotes)
	}

	for name, expr := range map[string]string{
		"quote history":  c.Schedules.QuoteHistory,
		"quote snapshot": c.Schedules.QuoteSnapshot,
		"trackers":       c.Schedules.Trackers,
		"cleanup":        c.Schedules.Cleanup,
	} {
		if _, err := cron.ParseSchedule(expr); err != nil {
			invalid("%s schedule %q: %v", name, expr, err)
		}
	}

	return errors.Join(errs...)
}
