package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"learnpress-facade/internal/config"
	"learnpress-facade/internal/infra/metrics"
)

const driverName = "postgres"

// Connect returns a live *pgxpool.Pool for a PostgreSQL-backed WordPress install.
func Connect(ctx context.Context, cfg config.StoreConfig) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = int32(cfg.MaxOpenConns)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pool, err := pgxpool.ConnectConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.Connect failed: %w", err)
	}
	return pool, nil
}

// PoolStats adapts pgxpool.Stat for the db_pool_stats collector.
func PoolStats(pool *pgxpool.Pool) func() metrics.PoolStats {
	return func() metrics.PoolStats {
		s := pool.Stat()
		return metrics.PoolStats{
			Total: s.TotalConns(),
			Idle:  s.IdleConns(),
			InUse: s.AcquiredConns(),
		}
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
