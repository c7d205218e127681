package db

import (
	"context"
	"fmt"
	"time"

	"rentapply/pkg/types"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens the pool and waits for the first ping.
func Connect(ctx context.Context, config *types.Config) (*pgxpool.Pool, error) {

	cfg, err := newPoolConfig(config)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// newPoolConfig parses DATABASE_URL. Tables are referenced unqualified, so
// the configured schema goes on the search_path unless the URL sets one.
func newPoolConfig(config *types.Config) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	params := cfg.ConnConfig.RuntimeParams
	if _, ok := params["search_path"]; !ok && config.DatabaseSchema != "" {
		params["search_path"] = config.DatabaseSchema
	}
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = "rentapply"
	}

	if config.DatabaseMaxConns > 0 {
		cfg.MaxConns = config.DatabaseMaxConns
	}
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.MaxConnLifetime = 45 * time.Minute

	return cfg, nil
}
