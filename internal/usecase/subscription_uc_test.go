//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/infra/logging"
)

func TestSubscriptionUseCase_StatusForUser(t *testing.T) {
	ctx := context.Background()

	newFixture := func() *fakeMembership {
		svc := newFakeMembership()
		svc.subs[7] = []model.RawRecord{
			model.RawRecord(`{"id":"1","subscription_plan_id":"3","status":"expired","auto_renew":"0"}`),
			model.RawRecord(`"garbage"`),
			model.RawRecord(`{"id":2,"subscription_plan_id":3,"status":"trial","start_date":"2024-05-01 00:00:00","auto_renew":1}`),
			model.RawRecord(`{"id":3,"subscription_plan_id":9,"status":"pending"}`),
		}
		svc.plans[3] = model.RawRecord(`{"id":3,"name":"Gold","price":"10","duration":"1","duration_unit":"month"}`)
		return svc
	}

	t.Run("should normalize, attach plans and count valid records", func(t *testing.T) {
		svc := newFixture()
		checker := &fakeChecker{member: true}
		uc := NewSubscriptionUseCase(svc, checker, newMemUserDir(), logging.Nop())

		v, err := uc.StatusForUser(ctx, 7)
		if err != nil {
			t.Fatalf("StatusForUser: %v", err)
		}
		if v.SubscriptionCount != 3 || len(v.Subscriptions) != 3 || !v.HasSubscription {
			t.Fatalf("expected 3 normalized records, got %+v", v)
		}
		if !v.HasActiveSubscription {
			t.Error("trial subscription must count as active")
		}
		if !v.IsMember {
			t.Error("expected checker answer to be used")
		}
		if v.Subscriptions[0].Plan == nil || v.Subscriptions[0].Plan.Name != "Gold" {
			t.Errorf("expected plan summary, got %+v", v.Subscriptions[0].Plan)
		}
		if v.Subscriptions[2].Plan != nil {
			t.Errorf("unknown plan must be omitted, got %+v", v.Subscriptions[2].Plan)
		}
		if svc.planCalls[3] != 1 {
			t.Errorf("expected plan 3 to be fetched once, got %d", svc.planCalls[3])
		}
		if len(checker.asked) != 2 || checker.asked[0] != 3 || checker.asked[1] != 9 {
			t.Errorf("expected distinct plan ids [3 9], got %v", checker.asked)
		}
	})

	t.Run("should fall back to active flag without a checker", func(t *testing.T) {
		uc := NewSubscriptionUseCase(newFixture(), nil, newMemUserDir(), logging.Nop())
		v, err := uc.StatusForUser(ctx, 7)
		if err != nil {
			t.Fatalf("StatusForUser: %v", err)
		}
		if !v.IsMember {
			t.Error("expected is_member to follow has_active_subscription")
		}
	})

	t.Run("should fall back when the capability is unavailable", func(t *testing.T) {
		checker := &fakeChecker{err: domain.ErrCapabilityUnavailable}
		uc := NewSubscriptionUseCase(newFixture(), checker, newMemUserDir(), logging.Nop())
		v, _ := uc.StatusForUser(ctx, 7)
		if !v.IsMember {
			t.Error("expected fallback to has_active_subscription")
		}
	})

	t.Run("no plan ids means no membership", func(t *testing.T) {
		svc := newFakeMembership()
		svc.subs[8] = []model.RawRecord{model.RawRecord(`{"id":1,"status":"active"}`)}
		checker := &fakeChecker{member: true}
		uc := NewSubscriptionUseCase(svc, checker, newMemUserDir(), logging.Nop())
		v, err := uc.StatusForUser(ctx, 8)
		if err != nil {
			t.Fatalf("StatusForUser: %v", err)
		}
		if v.IsMember || checker.calls != 0 {
			t.Errorf("expected is_member=false without asking the checker, got %v (%d calls)", v.IsMember, checker.calls)
		}
		if !v.HasActiveSubscription {
			t.Error("expected active subscription")
		}
	})

	t.Run("user without subscriptions", func(t *testing.T) {
		uc := NewSubscriptionUseCase(newFakeMembership(), nil, newMemUserDir(), logging.Nop())
		v, err := uc.StatusForUser(ctx, 42)
		if err != nil {
			t.Fatalf("StatusForUser: %v", err)
		}
		if v.HasSubscription || v.SubscriptionCount != 0 || v.Subscriptions == nil {
			t.Errorf("unexpected empty status: %+v", v)
		}
		if v.UserID != 42 {
			t.Errorf("expected user id 42, got %d", v.UserID)
		}
	})

	t.Run("service absent", func(t *testing.T) {
		uc := NewSubscriptionUseCase(nil, nil, newMemUserDir(), logging.Nop())
		if _, err := uc.StatusForUser(ctx, 7); !errors.Is(err, domain.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
		if uc.Available() {
			t.Error("expected Available() to be false")
		}
	})

	t.Run("upstream failures propagate", func(t *testing.T) {
		svc := newFakeMembership()
		svc.listErr = errors.New("boom")
		uc := NewSubscriptionUseCase(svc, nil, newMemUserDir(), logging.Nop())
		if _, err := uc.StatusForUser(ctx, 7); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestSubscriptionUseCase_ListPlans(t *testing.T) {
	ctx := context.Background()
	svc := newFakeMembership()
	svc.planList = []model.RawRecord{
		model.RawRecord(`{"id":1,"name":"Basic","status":"active","recurring":"1"}`),
		model.RawRecord(`{"id":"2","name":"Legacy","status":"inactive"}`),
		model.RawRecord(`42`),
		model.RawRecord(`{"id":3,"name":"Gold","status":"active"}`),
	}
	uc := NewSubscriptionUseCase(svc, nil, newMemUserDir(), logging.Nop())

	t.Run("no filter", func(t *testing.T) {
		v, err := uc.ListPlans(ctx, model.PlanFilter{})
		if err != nil {
			t.Fatalf("ListPlans: %v", err)
		}
		if v.TotalPlans != 3 || len(v.Plans) != 3 {
			t.Fatalf("expected 3 plans, got %+v", v)
		}
		if !v.Plans[0].Recurring || v.Plans[1].ID != 2 {
			t.Errorf("coercion mismatch: %+v", v.Plans)
		}
	})

	t.Run("filters are re-applied locally", func(t *testing.T) {
		f := model.PlanFilter{OnlyActive: true, Exclude: []int64{3}}
		v, err := uc.ListPlans(ctx, f)
		if err != nil {
			t.Fatalf("ListPlans: %v", err)
		}
		if v.TotalPlans != 1 || v.Plans[0].ID != 1 {
			t.Fatalf("expected only plan 1, got %+v", v.Plans)
		}
		if !svc.lastQuery.OnlyActive || len(svc.lastQuery.Exclude) != 1 {
			t.Errorf("filter must be forwarded upstream, got %+v", svc.lastQuery)
		}
	})

	t.Run("service absent", func(t *testing.T) {
		uc := NewSubscriptionUseCase(nil, nil, newMemUserDir(), logging.Nop())
		if _, err := uc.ListPlans(ctx, model.PlanFilter{}); !errors.Is(err, domain.ErrServiceUnavailable) {
			t.Fatalf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}

func TestSubscriptionUseCase_CanViewAndUserExists(t *testing.T) {
	ctx := context.Background()
	users := newMemUserDir(&model.User{ID: 7}, &model.User{ID: 1})
	users.admins[1] = true
	uc := NewSubscriptionUseCase(nil, nil, users, logging.Nop())

	if err := uc.CanView(ctx, nil, 7); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("anonymous caller: expected ErrUnauthorized, got %v", err)
	}
	if err := uc.CanView(ctx, &model.Principal{UserID: 7}, 7); err != nil {
		t.Errorf("self lookup must be allowed, got %v", err)
	}
	if err := uc.CanView(ctx, &model.Principal{UserID: 7}, 1); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("non-admin lookup of other user: expected ErrForbidden, got %v", err)
	}
	if err := uc.CanView(ctx, &model.Principal{UserID: 1}, 7); err != nil {
		t.Errorf("admin lookup must be allowed, got %v", err)
	}

	if ok, err := uc.UserExists(ctx, 7); err != nil || !ok {
		t.Errorf("expected user 7 to exist, got %v %v", ok, err)
	}
	if ok, err := uc.UserExists(ctx, 99); err != nil || ok {
		t.Errorf("expected user 99 to be missing, got %v %v", ok, err)
	}
}
