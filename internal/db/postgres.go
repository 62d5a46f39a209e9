package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"nexusq/internal/config"
	"nexusq/internal/logger"
	"nexusq/pkg/retry"
)

const driverName = "postgres"

// Open connects to Postgres and retries the initial ping with backoff.
func Open(ctx context.Context, cfg config.PostgresConfig, policy retry.Policy, log logger.Logger) (*sqlx.DB, error) {
	conn, err := sqlx.Open(driverName, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	conn.SetConnMaxLifetime(30 * time.Minute)

	err = retry.Do(ctx, policy, func() error {
		return conn.PingContext(ctx)
	}, func(attempt int, err error, next time.Duration) {
		log.Warnw("Postgres not ready, retrying",
			"attempt", attempt,
			"next_delay", next,
			"error", err,
		)
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return conn, nil
}
