package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/quotewatch/quote"
)

// PutDailyQuote sets the day's field in the symbol's daily Hash.
func (s *Store) PutDailyQuote(ctx context.Context, q quote.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("quotewatch/redis: marshal quote: %w", err)
	}
	hash, field := dailyQuotesKey(q.Symbol), q.DateKey()
	if err := s.client.HSet(ctx, hash, field, data).Err(); err != nil {
		return fmt.Errorf("quotewatch/redis: put daily quote: %w", err)
	}
	s.logger.Debug("daily quote set", slog.String("key", hash), slog.String("date", field))
	return nil
}

// PutHourlyQuote prepends q to the symbol's hourly List and trims it to the
// configured length.
func (s *Store) PutHourlyQuote(ctx context.Context, q quote.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("quotewatch/redis: marshal quote: %w", err)
	}
	key := hourlyQuotesKey(q.Symbol)

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(s.maxHourly-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("quotewatch/redis: put hourly quote: %w", err)
	}
	s.logger.Debug("hourly quote prepended", slog.String("key", key))
	return nil
}

// DailyQuote reads the day's field from the symbol's daily Hash.
func (s *Store) DailyQuote(ctx context.Context, symbol string, date time.Time) (quote.Quote, bool, error) {
	data, err := s.client.HGet(ctx, dailyQuotesKey(symbol), date.UTC().Format(quote.DateLayout)).Bytes()
	return decodeQuote(data, err, "daily quote")
}

// HourlyQuote reads index hoursAgo of the symbol's hourly List.
func (s *Store) HourlyQuote(ctx context.Context, symbol string, hoursAgo int) (quote.Quote, bool, error) {
	if hoursAgo < 0 {
		return quote.Quote{}, false, nil
	}
	data, err := s.client.LIndex(ctx, hourlyQuotesKey(symbol), int64(hoursAgo)).Bytes()
	return decodeQuote(data, err, "hourly quote")
}

// DailyTrackers scans for daily quote Hashes.
func (s *Store) DailyTrackers(ctx context.Context) ([]quote.Tracker, error) {
	return s.trackers(ctx, dailyQuotesPrefix)
}

// HourlyTrackers scans for hourly quote Lists.
func (s *Store) HourlyTrackers(ctx context.Context) ([]quote.Tracker, error) {
	return s.trackers(ctx, hourlyQuotesPrefix)
}

// RemoveDailyQuotes deletes the Hash fields dated before the UTC day of
// before. Day keys sort lexically in date order.
func (s *Store) RemoveDailyQuotes(ctx context.Context, symbol string, before time.Time) (int, error) {
	hash := dailyQuotesKey(symbol)
	days, err := s.client.HKeys(ctx, hash).Result()
	if err != nil {
		return 0, fmt.Errorf("quotewatch/redis: list daily quotes: %w", err)
	}

	threshold := before.UTC().Format(quote.DateLayout)
	var stale []string
	for _, day := range days {
		if day < threshold {
			stale = append(stale, day)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	n, err := s.client.HDel(ctx, hash, stale...).Result()
	if err != nil {
		return 0, fmt.Errorf("quotewatch/redis: remove daily quotes: %w", err)
	}
	s.logger.Info("removed daily quotes", slog.String("key", hash), slog.Int64("count", n))
	return int(n), nil
}

func (s *Store) trackers(ctx context.Context, prefix string) ([]quote.Tracker, error) {
	var symbols []string
	iter := s.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		symbol := strings.TrimPrefix(key, prefix)
		if symbol == "" || symbol == key {
			s.logger.Warn("unexpected quote key", slog.String("key", key))
			continue
		}
		symbols = append(symbols, symbol)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("quotewatch/redis: scan trackers: %w", err)
	}

	sort.Strings(symbols)
	out := make([]quote.Tracker, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, quote.Tracker{Symbol: sym})
	}
	return out, nil
}

func decodeQuote(data []byte, err error, what string) (quote.Quote, bool, error) {
	if errors.Is(err, goredis.Nil) {
		return quote.Quote{}, false, nil
	}
	if err != nil {
		return quote.Quote{}, false, fmt.Errorf("quotewatch/redis: get %s: %w", what, err)
	}
	var q quote.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return quote.Quote{}, false, fmt.Errorf("quotewatch/redis: decode %s: %w", what, err)
	}
	return q, true, nil
}
