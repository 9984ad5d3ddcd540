package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/quotewatch/quote"
)

// PutDailyQuote upserts the (symbol, day) row.
func (s *Store) PutDailyQuote(ctx context.Context, q quote.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("quotewatch/sqlite: marshal quote: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO quotewatch_daily_quotes (symbol, day, payload) VALUES (?, ?, ?)
		ON CONFLICT (symbol, day) DO UPDATE SET payload = excluded.payload`,
		q.Symbol, q.DateKey(), data,
	); err != nil {
		return fmt.Errorf("quotewatch/sqlite: put daily quote: %w", err)
	}
	return nil
}

// PutHourlyQuote inserts q and deletes the symbol's rows beyond the
// configured retention.
func (s *Store) PutHourlyQuote(ctx context.Context, q quote.Quote) error {
	data, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("quotewatch/sqlite: marshal quote: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("quotewatch/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO quotewatch_hourly_quotes (symbol, payload) VALUES (?, ?)`, q.Symbol, data,
	); err != nil {
		return fmt.Errorf("quotewatch/sqlite: put hourly quote: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM quotewatch_hourly_quotes
		WHERE symbol = ? AND seq NOT IN (
			SELECT seq FROM quotewatch_hourly_quotes
			WHERE symbol = ? ORDER BY seq DESC LIMIT ?
		)`,
		q.Symbol, q.Symbol, s.maxHourly,
	); err != nil {
		return fmt.Errorf("quotewatch/sqlite: trim hourly quotes: %w", err)
	}
	return tx.Commit()
}

// DailyQuote reads the (symbol, day) row.
func (s *Store) DailyQuote(ctx context.Context, symbol string, date time.Time) (quote.Quote, bool, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM quotewatch_daily_quotes WHERE symbol = ? AND day = ?`,
		symbol, date.UTC().Format(quote.DateLayout),
	).Scan(&data)
	return decodeQuote(data, err, "daily quote")
}

// HourlyQuote reads the symbol's row hoursAgo back from the newest.
func (s *Store) HourlyQuote(ctx context.Context, symbol string, hoursAgo int) (quote.Quote, bool, error) {
	if hoursAgo < 0 {
		return quote.Quote{}, false, nil
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM quotewatch_hourly_quotes
		WHERE symbol = ? ORDER BY seq DESC LIMIT 1 OFFSET ?`,
		symbol, hoursAgo,
	).Scan(&data)
	return decodeQuote(data, err, "hourly quote")
}

// DailyTrackers lists the distinct symbols of the daily table.
func (s *Store) DailyTrackers(ctx context.Context) ([]quote.Tracker, error) {
	return s.trackers(ctx, `SELECT DISTINCT symbol FROM quotewatch_daily_quotes ORDER BY symbol`)
}

// HourlyTrackers lists the distinct symbols of the hourly table.
func (s *Store) HourlyTrackers(ctx context.Context) ([]quote.Tracker, error) {
	return s.trackers(ctx, `SELECT DISTINCT symbol FROM quotewatch_hourly_quotes ORDER BY symbol`)
}

// RemoveDailyQuotes deletes the symbol's rows dated before the UTC day of
// before.
func (s *Store) RemoveDailyQuotes(ctx context.Context, symbol string, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM quotewatch_daily_quotes WHERE symbol = ? AND day < ?`,
		symbol, before.UTC().Format(quote.DateLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("quotewatch/sqlite: remove daily quotes: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("quotewatch/sqlite: remove daily quotes: %w", err)
	}
	return int(n), nil
}

func (s *Store) trackers(ctx context.Context, query string) ([]quote.Tracker, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("quotewatch/sqlite: list trackers: %w", err)
	}
	defer rows.Close()

	var out []quote.Tracker
	for rows.Next() {
		var t quote.Tracker
		if err := rows.Scan(&t.Symbol); err != nil {
			return nil, fmt.Errorf("quotewatch/sqlite: scan tracker: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func decodeQuote(data []byte, err error, what string) (quote.Quote, bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return quote.Quote{}, false, nil
	}
	if err != nil {
		return quote.Quote{}, false, fmt.Errorf("quotewatch/sqlite: get %s: %w", what, err)
	}
	var q quote.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return quote.Quote{}, false, fmt.Errorf("quotewatch/sqlite: decode %s: %w", what, err)
	}
	return q, true, nil
}
