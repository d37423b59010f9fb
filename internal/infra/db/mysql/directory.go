package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/domain/ports/repository"
	"learnpress-facade/internal/infra/db/wpdb"
	"learnpress-facade/internal/infra/metrics"
)

var (
	_ repository.UserDirectory   = (*UserDirectory)(nil)
	_ repository.CourseDirectory = (*CourseDirectory)(nil)
)

// UserDirectory reads accounts from the WordPress users and usermeta tables.
type UserDirectory struct {
	db       *sql.DB
	settings wpdb.Settings
}

func NewUserDirectory(db *sql.DB, settings wpdb.Settings) *UserDirectory {
	return &UserDirectory{db: db, settings: settings}
}

func (d *UserDirectory) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ID, user_login, display_name, user_email FROM ` + d.settings.Tables.Users + ` WHERE ID = ?`

	ctx, cancel := withTimeout(ctx, d.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	var (
		u     model.User
		login string
	)
	err := d.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &login, &u.DisplayName, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
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

// IsAdmin reports whether the user's capabilities grant the administrator role.
func (d *UserDirectory) IsAdmin(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	q := `SELECT meta_value FROM ` + d.settings.Tables.UserMeta + ` WHERE user_id = ? AND meta_key = ? LIMIT 1`

	ctx, cancel := withTimeout(ctx, d.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	var caps string
	err := d.db.QueryRowContext(ctx, q, id, d.settings.Tables.CapabilitiesKey).Scan(&caps)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.ObserveStoreQuery(driverName, "user_capabilities", started, nil)
		return false, nil
	}
	metrics.ObserveStoreQuery(driverName, "user_capabilities", started, err)
	if err != nil {
		return false, fmt.Errorf("IsAdmin: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return wpdb.IsAdministrator(caps), nil
}

// CourseDirectory reads LearnPress courses from the posts table.
type CourseDirectory struct {
	db       *sql.DB
	settings wpdb.Settings
}

func NewCourseDirectory(db *sql.DB, settings wpdb.Settings) *CourseDirectory {
	return &CourseDirectory{db: db, settings: settings}
}

func (d *CourseDirectory) FindByID(ctx context.Context, id int64) (*model.Course, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	q := `SELECT ID, post_title, post_name FROM ` + d.settings.Tables.Posts + ` WHERE ID = ? AND post_type = 'lp_course'`

	ctx, cancel := withTimeout(ctx, d.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	var (
		c        model.Course
		postName string
	)
	err := d.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Title, &postName)
	if errors.Is(err, sql.ErrNoRows) {
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
