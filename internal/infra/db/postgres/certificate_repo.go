package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/domain/ports/repository"
	"learnpress-facade/internal/infra/db/wpdb"
	"learnpress-facade/internal/infra/metrics"
)

var _ repository.CertificateRepository = (*PostgresCertificateRepo)(nil)

type PostgresCertificateRepo struct {
	pool     *pgxpool.Pool
	settings wpdb.Settings
	log      *zerolog.Logger
}

func NewCertificateRepo(pool *pgxpool.Pool, settings wpdb.Settings, logger *zerolog.Logger) *PostgresCertificateRepo {
	return &PostgresCertificateRepo{pool: pool, settings: settings, log: logger}
}

func (r *PostgresCertificateRepo) FindByUser(ctx context.Context, userID int64) ([]*model.Certificate, error) {
	if userID <= 0 {
		return []*model.Certificate{}, nil
	}
	q := `
SELECT option_id, option_name, option_value
  FROM ` + r.settings.Tables.Options + `
 WHERE option_name LIKE $1 AND option_value LIKE $2
 ORDER BY option_id DESC`

	ctx, cancel := withTimeout(ctx, r.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	rows, err := r.queryOptions(ctx, q, wpdb.CertificateNamePattern(), wpdb.UserToken(userID))
	metrics.ObserveStoreQuery(driverName, "certificates_by_user", started, err)
	if err != nil {
		return nil, fmt.Errorf("FindByUser: %w: %v", domain.ErrStoreUnavailable, err)
	}
	return wpdb.CollectForUser(rows, userID, r.settings.UploadBaseURL, r.log), nil
}

func (r *PostgresCertificateRepo) FindByCode(ctx context.Context, code string) (*model.Certificate, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidArgument
	}
	q := `
SELECT option_id, option_name, option_value
  FROM ` + r.settings.Tables.Options + `
 WHERE option_name = $1
 LIMIT 1`

	ctx, cancel := withTimeout(ctx, r.settings.QueryTimeout)
	defer cancel()
	started := time.Now()
	var row wpdb.OptionRow
	err := r.pool.QueryRow(ctx, q, wpdb.CertificateKey(code)).Scan(&row.ID, &row.Name, &row.Value)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.ObserveStoreQuery(driverName, "certificate_by_code", started, nil)
		return nil, domain.ErrNotFound
	}
	metrics.ObserveStoreQuery(driverName, "certificate_by_code", started, err)
	if err != nil {
		return nil, fmt.Errorf("FindByCode: %w: %v", domain.ErrStoreUnavailable, err)
	}

	cert, err := wpdb.DecodeCertificate(row, r.settings.UploadBaseURL)
	if err != nil {
		metrics.IncCertificateDecode("skipped")
		r.log.Warn().Err(err).Int64("option_id", row.ID).Msg("certificate value is not decodable")
		return nil, domain.ErrNotFound
	}
	metrics.IncCertificateDecode("ok")
	return cert, nil
}

func (r *PostgresCertificateRepo) queryOptions(ctx context.Context, q string, args ...any) ([]wpdb.OptionRow, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []wpdb.OptionRow
	for rows.Next() {
		var row wpdb.OptionRow
		if err := rows.Scan(&row.ID, &row.Name, &row.Value); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
