// Package quote defines the price quote model and the store contract the
// sync requests write to.
package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the day key format used for daily quotes.
const DateLayout = "2006-01-02"

// Quote is an OHLC price quote for a symbol in a currency.
type Quote struct {
	// Symbol is the base asset, like BTC.
	Symbol   string          `json:"symbol"`
	Open     decimal.Decimal `json:"open"`
	Close    decimal.Decimal `json:"close"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Currency string          `json:"currency"`
	Date     time.Time       `json:"date"`
}

// DateKey returns the UTC day the quote belongs to.
func (q Quote) DateKey() string { return q.Date.UTC().Format(DateLayout) }

func (q Quote) String() string {
	return fmt.Sprintf("%s/%s@%s close=%s", q.Symbol, q.Currency, q.Date.UTC().Format(time.RFC3339), q.Close)
}

// Tracker is a symbol with a stored quote history.
type Tracker struct {
	Symbol string `json:"symbol"`
}

// Store persists quotes. Implementations must be safe for concurrent use.
type Store interface {
	// PutDailyQuote stores q under its symbol and day, replacing any quote
	// already stored for that day.
	PutDailyQuote(ctx context.Context, q Quote) error

	// PutHourlyQuote prepends q to the symbol's hourly list, keeping only
	// the most recent entries.
	PutHourlyQuote(ctx context.Context, q Quote) error

	// DailyQuote returns the stored quote for symbol on date's UTC day.
	// It reports false if there is none.
	DailyQuote(ctx context.Context, symbol string, date time.Time) (Quote, bool, error)

	// HourlyQuote returns the quote hoursAgo entries back from the newest.
	// It reports false if there is none.
	HourlyQuote(ctx context.Context, symbol string, hoursAgo int) (Quote, bool, error)

	// DailyTrackers lists every symbol with at least one daily quote.
	DailyTrackers(ctx context.Context) ([]Tracker, error)

	// HourlyTrackers lists every symbol with at least one hourly quote.
	HourlyTrackers(ctx context.Context) ([]Tracker, error)

	// RemoveDailyQuotes deletes the symbol's daily quotes dated before the
	// UTC day of before and returns how many were removed.
	RemoveDailyQuotes(ctx context.Context, symbol string, before time.Time) (int, error)
}

// DefaultMaxHourly is the hourly retention used when none is configured.
const DefaultMaxHourly = 24

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
