package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/quotewatch/request"
)

// EnqueueRequest inserts info at the tail of its tag's queue.
func (s *Store) EnqueueRequest(ctx context.Context, info request.Info) error {
	data, err := request.Encode(info)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO quotewatch_requests (tag, request_id, payload) VALUES (?, ?, ?)`,
		info.APITag, info.ID, data,
	); err != nil {
		return fmt.Errorf("quotewatch/sqlite: enqueue request: %w", err)
	}
	return nil
}

// EnqueueRequests inserts infos in order inside one transaction.
func (s *Store) EnqueueRequests(ctx context.Context, tag string, infos []request.Info) error {
	if err := request.ValidateBatch(tag, infos); err != nil {
		return err
	}
	if len(infos) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("quotewatch/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quotewatch_requests (tag, request_id, payload) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("quotewatch/sqlite: prepare enqueue: %w", err)
	}
	defer stmt.Close()

	for _, info := range infos {
		data, err := request.Encode(info)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, tag, info.ID, data); err != nil {
			return fmt.Errorf("quotewatch/sqlite: enqueue requests: %w", err)
		}
	}
	return tx.Commit()
}

// DequeueRequests selects and deletes up to maxCount head rows of tag's
// queue in one transaction.
func (s *Store) DequeueRequests(ctx context.Context, tag string, maxCount int) ([]request.Info, error) {
	if maxCount < 1 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("quotewatch/sqlite: begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		`SELECT seq, payload FROM quotewatch_requests WHERE tag = ? ORDER BY seq LIMIT ?`,
		tag, maxCount,
	)
	if err != nil {
		return nil, fmt.Errorf("quotewatch/sqlite: dequeue requests: %w", err)
	}

	var (
		last  int64
		infos []request.Info
		errs  []error
	)
	for rows.Next() {
		var (
			seq     int64
			payload []byte
		)
		if err := rows.Scan(&seq, &payload); err != nil {
			rows.Close()
			return nil, fmt.Errorf("quotewatch/sqlite: scan request: %w", err)
		}
		last = seq

		info, err := request.Decode(payload)
		if err != nil {
			s.logger.Error("dropping undecodable request",
				slog.String("api_tag", tag),
				slog.Int64("seq", seq),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("quotewatch/sqlite: dequeue requests: %w", err)
	}
	rows.Close()

	if last == 0 {
		return nil, nil
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM quotewatch_requests WHERE tag = ? AND seq <= ?`, tag, last,
	); err != nil {
		return nil, fmt.Errorf("quotewatch/sqlite: delete dequeued: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("quotewatch/sqlite: commit dequeue: %w", err)
	}

	if len(errs) > 0 {
		return infos, fmt.Errorf("quotewatch/sqlite: dequeue requests: %w", errors.Join(errs...))
	}
	return infos, nil
}

// QueueLength counts the rows waiting on tag.
func (s *Store) QueueLength(ctx context.Context, tag string) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM quotewatch_requests WHERE tag = ?`, tag,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("quotewatch/sqlite: queue length: %w", err)
	}
	return n, nil
}
