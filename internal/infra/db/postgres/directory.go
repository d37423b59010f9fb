package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/domain/ports/repository"
	"learnpress-facade/internal/infra/db/wpdb"
	"learnpress-facade/internal/infra/metrics"
)

var (
	_ repository.UserDirectory   = (*PostgresUserDirectory)(nil)
	_ repository.CourseDirectory = (*PostgresCourseDirectory)(nil)
)

type PostgresUserDirectory struct {
	pool     *pgxpool.Pool
	settings wpdb.Settings
}

func NewUserDirectory(pool *pgxpool.Pool, settings wpdb.Settings) *PostgresUserDirectory {
	return &PostgresUserDirectory{pool: pool, settings: settings}
}

func (d *PostgresUserDirectory) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	q := `SELECT id, user_login, display_name, user_email FROM ` + d.settings.Tables.Users + ` WHERE id = $1`

	ctx, cancel := withTimeout(ctx, d.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	var (
		u     model.User
		login string
	)
	err := d.pool.QueryRow(ctx, q, id).Scan(&u.ID, &login, &u.DisplayName, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveStoreQuery(driverName, "user_by_id", started, nil)
		return nil, domain.ErrNotFound
	}
	metrics.ObserveStoreQuery(driverName, "user_by_id", started, err)
	if err != nil {
		return nil, fmt.Errorf("FindByID: %w: %v", domain.ErrStoreUnavailable, err)
	}
	u.DisplayName = wpdb.DisplayName(u.DisplayName, login)
	return &u, nil
}

func (d *PostgresUserDirectory) IsAdmin(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	q := `SELECT meta_value FROM ` + d.settings.Tables.UserMeta + ` WHERE user_id = $1 AND meta_key = $2 LIMIT 1`

	ctx, cancel := withTimeout(ctx, d.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	var caps string
	err := d.pool.QueryRow(ctx, q, id, d.settings.Tables.CapabilitiesKey).Scan(&caps)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveStoreQuery(driverName, "user_capabilities", started, nil)
		return false, nil
	}
	metrics.ObserveStoreQuery(driverName, "user_capabilities", started, err)
	if err != nil {
		return false, fmt.Errorf("IsAdmin: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return wpdb.IsAdministrator(caps), nil
}

type PostgresCourseDirectory struct {
	pool     *pgxpool.Pool
	settings wpdb.Settings
}

func NewCourseDirectory(pool *pgxpool.Pool, settings wpdb.Settings) *PostgresCourseDirectory {
	return &PostgresCourseDirectory{pool: pool, settings: settings}
}

func (d *PostgresCourseDirectory) FindByID(ctx context.Context, id int64) (*model.Course, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	q := `SELECT id, post_title, post_name FROM ` + d.settings.Tables.Posts + ` WHERE id = $1 AND post_type = 'lp_course'`

	ctx, cancel := withTimeout(ctx, d.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	var (
		c        model.Course
		postName string
	)
	err := d.pool.QueryRow(ctx, q, id).Scan(&c.ID, &c.Title, &postName)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveStoreQuery(driverName, "course_by_id", started, nil)
		return nil, domain.ErrNotFound
	}
	metrics.ObserveStoreQuery(driverName, "course_by_id", started, err)
	if err != nil {
		return nil, fmt.Errorf("FindByID: %w: %v", domain.ErrStoreUnavailable, err)
	}
	c.Slug, c.URL = wpdb.CourseURL(d.settings, c.ID, postName)
	return &c, nil
}
