// Package memory provides an in-memory implementation of store.Store.
// Useful for testing and development; data does not survive a restart.
package memory

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/xraph/quotewatch"
	"github.com/xraph/quotewatch/quote"
	"github.com/xraph/quotewatch/request"
	"github.com/xraph/quotewatch/store"
)

// Compile-time interface checks.
var (
	_ store.Store   = (*Store)(nil)
	_ request.Store = (*Store)(nil)
	_ quote.Store   = (*Store)(nil)
)

// Option configures a Store.
type Option func(*Store)

// WithMaxHourlyQuotes sets how many hourly quotes are kept per symbol.
func WithMaxHourlyQuotes(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHourly = n
		}
	}
}

// Store is an in-memory store.
type Store struct {
	mu sync.Mutex

	queues map[string][]request.Info
	daily  map[string]map[string]quote.Quote
	hourly map[string][]quote.Quote

	maxHourly int
	closed    bool
}

// New returns a new empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		queues:    make(map[string][]request.Info),
		daily:     make(map[string]map[string]quote.Quote),
		hourly:    make(map[string][]quote.Quote),
		maxHourly: quote.DefaultMaxHourly,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Ping always succeeds on an open store.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return quotewatch.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed. Further calls fail with ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// ──────────────────────────────────────────────────
// Request queue
// ──────────────────────────────────────────────────

// EnqueueRequest appends info to its tag's queue.
func (s *Store) EnqueueRequest(_ context.Context, info request.Info) error {
	if err := info.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return quotewatch.ErrStoreClosed
	}
	s.queues[info.APITag] = append(s.queues[info.APITag], info)
	return nil
}

// EnqueueRequests appends infos to tag's queue in order.
func (s *Store) EnqueueRequests(_ context.Context, tag string, infos []request.Info) error {
	if err := request.ValidateBatch(tag, infos); err != nil {
		return err
	}
	if len(infos) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return quotewatch.ErrStoreClosed
	}
	s.queues[tag] = append(s.queues[tag], infos...)
	return nil
}

// DequeueRequests pops up to maxCount items from the head of tag's queue.
func (s *Store) DequeueRequests(_ context.Context, tag string, maxCount int) ([]request.Info, error) {
	if maxCount < 1 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, quotewatch.ErrStoreClosed
	}

	q := s.queues[tag]
	n := min(maxCount, len(q))
	if n == 0 {
		return nil, nil
	}
	out := slices.Clone(q[:n])
	if n == len(q) {
		delete(s.queues, tag)
	} else {
		s.queues[tag] = slices.Clone(q[n:])
	}
	return out, nil
}

// QueueLength returns the number of items waiting on tag.
func (s *Store) QueueLength(_ context.Context, tag string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, quotewatch.ErrStoreClosed
	}
	return int64(len(s.queues[tag])), nil
}

// ──────────────────────────────────────────────────
// Quotes
// ──────────────────────────────────────────────────

// PutDailyQuote stores q under its symbol and UTC day.
func (s *Store) PutDailyQuote(_ context.Context, q quote.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return quotewatch.ErrStoreClosed
	}
	days, ok := s.daily[q.Symbol]
	if !ok {
		days = make(map[string]quote.Quote)
		s.daily[q.Symbol] = days
	}
	days[q.DateKey()] = q
	return nil
}

// PutHourlyQuote prepends q to the symbol's hourly list.
func (s *Store) PutHourlyQuote(_ context.Context, q quote.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return quotewatch.ErrStoreClosed
	}
	list := append([]quote.Quote{q}, s.hourly[q.Symbol]...)
	if len(list) > s.maxHourly {
		list = list[:s.maxHourly]
	}
	s.hourly[q.Symbol] = list
	return nil
}

// DailyQuote returns the quote for symbol on date's UTC day.
func (s *Store) DailyQuote(_ context.Context, symbol string, date time.Time) (quote.Quote, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return quote.Quote{}, false, quotewatch.ErrStoreClosed
	}
	q, ok := s.daily[symbol][date.UTC().Format(quote.DateLayout)]
	return q, ok, nil
}

// HourlyQuote returns the quote hoursAgo entries back from the newest.
func (s *Store) HourlyQuote(_ context.Context, symbol string, hoursAgo int) (quote.Quote, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return quote.Quote{}, false, quotewatch.ErrStoreClosed
	}
	list := s.hourly[symbol]
	if hoursAgo < 0 || hoursAgo >= len(list) {
		return quote.Quote{}, false, nil
	}
	return list[hoursAgo], true, nil
}

// DailyTrackers lists symbols with daily quotes, sorted by symbol.
func (s *Store) DailyTrackers(_ context.Context) ([]quote.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, quotewatch.ErrStoreClosed
	}
	return trackers(slices.Collect(maps.Keys(s.daily))), nil
}

// HourlyTrackers lists symbols with hourly quotes, sorted by symbol.
func (s *Store) HourlyTrackers(_ context.Context) ([]quote.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, quotewatch.ErrStoreClosed
	}
	return trackers(slices.Collect(maps.Keys(s.hourly))), nil
}

// RemoveDailyQuotes deletes the symbol's daily quotes dated before the UTC
// day of before.
func (s *Store) RemoveDailyQuotes(_ context.Context, symbol string, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, quotewatch.ErrStoreClosed
	}
	threshold := before.UTC().Format(quote.DateLayout)
	removed := 0
	for day := range s.daily[symbol] {
		if day < threshold {
			delete(s.daily[symbol], day)
			removed++
		}
	}
	if len(s.daily[symbol]) == 0 {
		delete(s.daily, symbol)
	}
	return removed, nil
}

func trackers(symbols []string) []quote.Tracker {
	sort.Strings(symbols)
	out := make([]quote.Tracker, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, quote.Tracker{Symbol: sym})
	}
	return out
}
