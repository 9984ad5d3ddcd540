package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/quotewatch/store"
	"github.com/xraph/quotewatch/store/memory"
	redisstore "github.com/xraph/quotewatch/store/redis"
	"github.com/xraph/quotewatch/store/sqlite"
)

// openStore opens the configured backend. The returned close func releases
// everything openStore allocated.
func openStore(ctx context.Context, s settings, logger *slog.Logger) (store.Store, func() error, error) {
	maxHourly := s.Config.MaxHourlyQuotes

	switch s.Store {
	case storeMemory:
		st := memory.New(memory.WithMaxHourlyQuotes(maxHourly))
		return st, st.Close, nil

	case storeSQLite:
		st, err := sqlite.Open(ctx, s.SQLitePath,
			sqlite.WithLogger(logger),
			sqlite.WithMaxHourlyQuotes(maxHourly),
		)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil

	case storeRedis:
		client := goredis.NewClient(&goredis.Options{Addr: s.RedisAddr, DB: s.RedisDB})
		st := redisstore.New(client,
			redisstore.WithLogger(logger),
			redisstore.WithMaxHourlyQuotes(maxHourly),
		)
		if err := st.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis at %s: %w", s.RedisAddr, err)
		}
		return st, client.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", s.Store)
	}
}
