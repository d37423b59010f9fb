package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	drv "github.com/go-sql-driver/mysql"

	"learnpress-facade/internal/config"
	"learnpress-facade/internal/infra/metrics"
)

const driverName = "mysql"

// Open returns a pinged *sql.DB for a WordPress MySQL database.
func Open(ctx context.Context, cfg config.StoreConfig) (*sql.DB, error) {
	dc, err := drv.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	if dc.Timeout == 0 {
		dc.Timeout = cfg.QueryTimeout
	}
	if dc.ReadTimeout == 0 {
		dc.ReadTimeout = cfg.QueryTimeout
	}
	connector, err := drv.NewConnector(dc)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

// PoolStats adapts sql.DBStats for the db_pool_stats collector.
func PoolStats(db *sql.DB) func() metrics.PoolStats {
	return func() metrics.PoolStats {
		s := db.Stats()
		return metrics.PoolStats{
			Total: int32(s.OpenConnections),
			Idle:  int32(s.Idle),
			InUse: int32(s.InUse),
		}
	}
}

// withTimeout bounds a single query; a zero duration means no bound.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
