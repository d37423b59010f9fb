package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Schema creates the subset of WordPress tables the facade reads, using the
// default wp_ prefix. It is meant for development and tests only.
//
//go:embed schema.sql
var Schema string

// EnsureSchema applies Schema. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
