package adapter

import (
	"context"

	"learnpress-facade/internal/domain/model"
)

// MembershipService is the port for the external subscription plugin.
// Records are returned raw; callers normalize them at the boundary.
type MembershipService interface {
	ListSubscriptions(ctx context.Context, userID int64) ([]model.RawRecord, error)
	// GetPlan returns domain.ErrNotFound for unknown plans.
	GetPlan(ctx context.Context, planID int64) (model.RawRecord, error)
	ListPlans(ctx context.Context, filter model.PlanFilter) ([]model.RawRecord, error)
}

// MembershipChecker is an optional capability of a MembershipService.
// Implementations return domain.ErrCapabilityUnavailable when the upstream
// does not expose membership checks.
type MembershipChecker interface {
	IsMemberOfAnyPlan(ctx context.Context, userID int64, planIDs []int64) (bool, error)
}
