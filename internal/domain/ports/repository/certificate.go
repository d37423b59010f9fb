package repository

import (
	"context"

	"learnpress-facade/internal/domain/model"
)

// CertificateRepository is the port for the certificate record store.
// How records are keyed and encoded is private to each implementation.
type CertificateRepository interface {
	// FindByUser returns every certificate owned by userID, newest first.
	// Undecodable records are skipped; an unknown user yields an empty slice.
	FindByUser(ctx context.Context, userID int64) ([]*model.Certificate, error)

	// FindByCode returns the certificate with the given verification code
	// or domain.ErrNotFound.
	FindByCode(ctx context.Context, code string) (*model.Certificate, error)
}
