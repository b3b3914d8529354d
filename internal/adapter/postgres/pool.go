package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/lexibridge/internal/config"
	"github.com/heartmarshall/lexibridge/pkg/ctxutil"
)

// NewPool creates a PostgreSQL connection pool configured from DatabaseConfig.
// It parses the connection string, applies pool settings (max/min conns,
// lifetimes), tags connections with the run ID from ctx, pings the database
// for fail-fast validation, and returns the ready pool.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime

	if runID := ctxutil.RunIDFromCtx(ctx); runID != "" {
		poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName(runID)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// applicationName fits the run ID into PostgreSQL's 63-byte identifier limit.
func applicationName(runID string) string {
	name := "bridge-import/" + runID
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}
