package quotewatch_test

import (
	"errors"
	"testing"

	"github.com/xraph/quotewatch"
)

func validConfig() quotewatch.Config {
	cfg := quotewatch.DefaultConfig()
	cfg.Polygon.APIKey = "key"
	return cfg
}

func TestDefaultConfig_ValidWithKey(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := quotewatch.DefaultConfig().Validate(); !errors.Is(err, quotewatch.ErrInvalidConfig) {
		t.Errorf("missing polygon key: got %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*quotewatch.Config)
	}{
		{"zero interval", func(c *quotewatch.Config) { c.Interval = 0 }},
		{"negative timeout", func(c *quotewatch.Config) { c.RequestTimeout = -1 }},
		{"zero polygon rate", func(c *quotewatch.Config) { c.Polygon.MaxRequestsPerInterval = 0 }},
		{"zero messari rate", func(c *quotewatch.Config) { c.Messari.MaxRequestsPerInterval = 0 }},
		{"missing base url", func(c *quotewatch.Config) { c.Messari.BaseURL = "" }},
		{"quote limit too high", func(c *quotewatch.Config) { c.QuoteLimit = 501 }},
		{"history days zero", func(c *quotewatch.Config) { c.QuoteHistoryDays = 0 }},
		{"history days too high", func(c *quotewatch.Config) { c.QuoteHistoryDays = 1001 }},
		{"hourly quotes too high", func(c *quotewatch.Config) { c.MaxHourlyQuotes = 101 }},
		{"bad cron", func(c *quotewatch.Config) { c.Schedules.Trackers = "every day" }},
		{"empty cron", func(c *quotewatch.Config) { c.Schedules.QuoteSnapshot = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, quotewatch.ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Interval = 0
	cfg.QuoteLimit = 0
	cfg.Schedules.Cleanup = "nope"

	err := cfg.Validate()
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		t.Fatalf("error %T is not a joined error", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("joined %d errors, want 3: %v", n, err)
	}
}

func TestAPIConfigs(t *testing.T) {
	cfg := validConfig()
	apis := cfg.APIConfigs()
	if len(apis) != 2 {
		t.Fatalf("got %d api configs, want 2", len(apis))
	}
	if apis[quotewatch.TagPolygon].APIKey != "key" {
		t.Errorf("polygon config = %+v", apis[quotewatch.TagPolygon])
	}
	if apis[quotewatch.TagMessari].MaxRequestsPerInterval != cfg.Messari.MaxRequestsPerInterval {
		t.Errorf("messari config = %+v", apis[quotewatch.TagMessari])
	}
}
