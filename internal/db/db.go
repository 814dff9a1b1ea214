// Package db owns the process-wide Postgres connection pool.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/procurehq/rfpflow/internal/config"
)

var Pool *pgxpool.Pool

// Init dials the pool and verifies the connection. Pool stays nil on
// failure so a later Close is a no-op.
func Init(ctx context.Context) error {
	cfg := config.LoadDatabase()
	if cfg.URL == "" {
		return fmt.Errorf("database.url not configured")
	}

	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	Pool = pool
	log.Info("database pool ready")
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
	}
}
