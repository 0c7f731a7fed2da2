package storage

import (
	"context"
	"fmt"

	"lostfound/internal/config"
	"lostfound/internal/redisclient"
)

// Open returns the repository selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg config.Config) (Repository, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		rdb, err := redisclient.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(rdb), nil
	case "postgres":
		pg, err := NewPostgresStore(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("postgres migrate: %w", err)
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
