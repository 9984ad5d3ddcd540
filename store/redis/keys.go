package redis

// Redis key naming conventions for quotewatch data.
// All keys are prefixed with "quotewatch:" to avoid collisions.

const keyPrefix = "quotewatch:"

// ── Request keys ──

// requestsKey returns the List key for a tag's queue: quotewatch:requests:{tag}
func requestsKey(tag string) string { return keyPrefix + "requests:" + tag }

// ── Quote keys ──

const (
	dailyQuotesPrefix  = keyPrefix + "quotes:daily:"
	hourlyQuotesPrefix = keyPrefix + "quotes:hourly:"
)

// dailyQuotesKey returns the Hash key of a symbol's daily quotes, keyed by
// day: quotewatch:quotes:daily:{symbol}
func dailyQuotesKey(symbol string) string { return dailyQuotesPrefix + symbol }

// hourlyQuotesKey returns the List key of a symbol's hourly quotes, newest
// first: quotewatch:quotes:hourly:{symbol}
func hourlyQuotesKey(symbol string) string { return hourlyQuotesPrefix + symbol }
