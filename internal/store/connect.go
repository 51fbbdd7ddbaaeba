package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"memory-server/internal/models"
)

const (
	connectTimeout = 10 * time.Second
	maxPoolConns   = 10
)

// ConnectPool opens a pgx connection pool against url and verifies it with a
// ping before handing it back. The caller owns the pool and must Close it.
func ConnectPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("%w: parse database url: %v", models.ErrStorage, err)
	}
	poolConfig.MaxConns = maxPoolConns

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: create connection pool: %v", models.ErrStorage, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping database: %v", models.ErrStorage, err)
	}
	return pool, nil
}
