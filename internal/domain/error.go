package domain

import "errors"

var (
	// Request-level errors, mapped to HTTP statuses by the api layer.
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("access to this resource is not allowed")
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrServiceUnavailable = errors.New("membership service is not available")

	// ErrStoreUnavailable wraps failures of the underlying options/users/posts tables.
	ErrStoreUnavailable = errors.New("record store unavailable")

	// ErrCapabilityUnavailable is returned by optional upstream capabilities
	// (e.g. membership checks) that the connected service does not provide.
	ErrCapabilityUnavailable = errors.New("capability not provided by upstream")
)
