package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/domain/ports/adapter"
	"learnpress-facade/internal/domain/ports/repository"
	"learnpress-facade/internal/infra/logging"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase answers membership questions on top of the external
// subscription service. Every operation that needs the service returns
// domain.ErrServiceUnavailable when it is not configured.
type SubscriptionUseCase interface {
	StatusForUser(ctx context.Context, userID int64) (*SubscriptionStatusView, error)
	ListPlans(ctx context.Context, filter model.PlanFilter) (*PlanListView, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	CanView(ctx context.Context, caller *model.Principal, userID int64) error
	Available() bool
}

type subscriptionUC struct {
	svc     adapter.MembershipService
	checker adapter.MembershipChecker
	users   repository.UserDirectory
	log     *zerolog.Logger
}

// NewSubscriptionUseCase wires the use case. svc and checker may be nil.
func NewSubscriptionUseCase(svc adapter.MembershipService, checker adapter.MembershipChecker, users repository.UserDirectory, logger *zerolog.Logger) *subscriptionUC {
	return &subscriptionUC{svc: svc, checker: checker, users: users, log: logger}
}

func (s *subscriptionUC) Available() bool { return s.svc != nil }

// CanView allows callers to read their own status; anyone else needs the administrator role.
func (s *subscriptionUC) CanView(ctx context.Context, caller *model.Principal, userID int64) error {
	if caller.IsZero() {
		return domain.ErrUnauthorized
	}
	if caller.UserID == userID {
		return nil
	}
	admin, err := s.users.IsAdmin(ctx, caller.UserID)
	if err != nil {
		return err
	}
	if !admin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *subscriptionUC) UserExists(ctx context.Context, userID int64) (bool, error) {
	if userID <= 0 {
		return false, nil
	}
	_, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *subscriptionUC) StatusForUser(ctx context.Context, userID int64) (*SubscriptionStatusView, error) {
	defer logging.TraceDuration(s.log, "SubscriptionUC.StatusForUser")()

	if s.svc == nil {
		return nil, domain.ErrServiceUnavailable
	}
	raws, err := s.svc.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("StatusForUser: %w", err)
	}

	plans := make(map[int64]*model.PlanSummary)
	var planIDs []int64
	view := &SubscriptionStatusView{UserID: userID, Subscriptions: []SubscriptionView{}}
	for _, raw := range raws {
		rec, ok := model.NormalizeSubscription(raw)
		if !ok {
			logging.With(ctx, s.log).Debug().Int64("user_id", userID).Msg("skipping malformed subscription record")
			continue
		}
		if rec.PlanID > 0 {
			if _, seen := plans[rec.PlanID]; !seen {
				plans[rec.PlanID] = s.planSummary(ctx, rec.PlanID)
				planIDs = append(planIDs, rec.PlanID)
			}
			rec.Plan = plans[rec.PlanID]
		}
		if rec.IsActive() {
			view.HasActiveSubscription = true
		}
		view.Subscriptions = append(view.Subscriptions, newSubscriptionView(rec))
	}
	view.SubscriptionCount = len(view.Subscriptions)
	view.HasSubscription = view.SubscriptionCount > 0
	view.IsMember = s.isMember(ctx, userID, planIDs, view.HasActiveSubscription)
	return view, nil
}

func (s *subscriptionUC) planSummary(ctx context.Context, planID int64) *model.PlanSummary {
	raw, err := s.svc.GetPlan(ctx, planID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.With(ctx, s.log).Warn().Err(err).Int64("plan_id", planID).Msg("plan lookup failed")
		}
		return nil
	}
	p, ok := model.NormalizePlanSummary(raw)
	if !ok {
		return nil
	}
	return p
}

// isMember asks the membership checker when one is available. Without plan
// ids the user cannot be a member of any of them.
func (s *subscriptionUC) isMember(ctx context.Context, userID int64, planIDs []int64, hasActive bool) bool {
	if s.checker == nil {
		return hasActive
	}
	if len(planIDs) == 0 {
		return false
	}
	ok, err := s.checker.IsMemberOfAnyPlan(ctx, userID, planIDs)
	if errors.Is(err, domain.ErrCapabilityUnavailable) {
		return hasActive
	}
	if err != nil {
		logging.With(ctx, s.log).Warn().Err(err).Int64("user_id", userID).Msg("membership check failed; using active subscriptions")
		return hasActive
	}
	return ok
}

func (s *subscriptionUC) ListPlans(ctx context.Context, filter model.PlanFilter) (*PlanListView, error) {
	defer logging.TraceDuration(s.log, "SubscriptionUC.ListPlans")()

	if s.svc == nil {
		return nil, domain.ErrServiceUnavailable
	}
	raws, err := s.svc.ListPlans(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListPlans: %w", err)
	}
	view := &PlanListView{Plans: make([]PlanView, 0, len(raws))}
	for _, raw := range raws {
		p, ok := model.NormalizePlan(raw)
		if !ok || !filter.Match(p) {
			continue
		}
		view.Plans = append(view.Plans, newPlanView(p))
	}
	view.TotalPlans = len(view.Plans)
	return view, nil
}
