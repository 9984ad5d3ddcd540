package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/xraph/quotewatch/request"
)

// EnqueueRequest appends info to the tail of its tag's List.
func (s *Store) EnqueueRequest(ctx context.Context, info request.Info) error {
	data, err := request.Encode(info)
	if err != nil {
		return err
	}
	if err := s.client.RPush(ctx, requestsKey(info.APITag), data).Err(); err != nil {
		return fmt.Errorf("quotewatch/redis: enqueue request: %w", err)
	}
	return nil
}

// EnqueueRequests appends infos to tag's List in a single RPUSH.
func (s *Store) EnqueueRequests(ctx context.Context, tag string, infos []request.Info) error {
	if err := request.ValidateBatch(tag, infos); err != nil {
		return err
	}
	if len(infos) == 0 {
		return nil
	}

	values := make([]any, 0, len(infos))
	for _, info := range infos {
		data, err := request.Encode(info)
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	if err := s.client.RPush(ctx, requestsKey(tag), values...).Err(); err != nil {
		return fmt.Errorf("quotewatch/redis: enqueue requests: %w", err)
	}
	return nil
}

// DequeueRequests pops up to maxCount entries from the head of tag's List.
// The read and the trim run in one MULTI so concurrent producers appending
// to the tail neither lose nor duplicate an entry.
func (s *Store) DequeueRequests(ctx context.Context, tag string, maxCount int) ([]request.Info, error) {
	if maxCount < 1 {
		return nil, nil
	}
	key := requestsKey(tag)

	pipe := s.client.TxPipeline()
	rng := pipe.LRange(ctx, key, 0, int64(maxCount-1))
	pipe.LTrim(ctx, key, int64(maxCount), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("quotewatch/redis: dequeue requests: %w", err)
	}

	raw := rng.Val()
	infos := make([]request.Info, 0, len(raw))
	var errs []error
	for _, entry := range raw {
		info, err := request.Decode([]byte(entry))
		if err != nil {
			s.logger.Error("dropping undecodable request",
				slog.String("api_tag", tag),
				slog.String("error", err.Error()),
			)
			errs = append(errs, err)
			continue
		}
		infos = append(infos, info)
	}
	if len(errs) > 0 {
		return infos, fmt.Errorf("quotewatch/redis: dequeue requests: %w", errors.Join(errs...))
	}
	return infos, nil
}

// QueueLength returns LLEN of tag's List.
func (s *Store) QueueLength(ctx context.Context, tag string) (int64, error) {
	n, err := s.client.LLen(ctx, requestsKey(tag)).Result()
	if err != nil {
		return 0, fmt.Errorf("quotewatch/redis: queue length: %w", err)
	}
	return n, nil
}
