//go:build !integration

package usecase

import (
	"context"
	"sync"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
)

// memCertRepo is a small in-memory implementation used by unit tests.
type memCertRepo struct {
	certs []*model.Certificate // newest first
	err   error
}

func (m *memCertRepo) FindByUser(ctx context.Context, userID int64) ([]*model.Certificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*model.Certificate
	for _, c := range m.certs {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memCertRepo) FindByCode(ctx context.Context, code string) (*model.Certificate, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, c := range m.certs {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memUserDir struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	admins map[int64]bool
	err    error
	calls  int
}

func newMemUserDir(users ...*model.User) *memUserDir {
	d := &memUserDir{users: make(map[int64]*model.User), admins: make(map[int64]bool)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (m *memUserDir) FindByID(ctx context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserDir) IsAdmin(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.admins[id], nil
}

type memCourseDir struct {
	courses map[int64]*model.Course
}

func (m *memCourseDir) FindByID(ctx context.Context, id int64) (*model.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// fakeMembership serves canned upstream payloads.
type fakeMembership struct {
	mu        sync.Mutex
	subs      map[int64][]model.RawRecord
	plans     map[int64]model.RawRecord
	planList  []model.RawRecord
	planCalls map[int64]int
	lastQuery model.PlanFilter
	listErr   error
}

func newFakeMembership() *fakeMembership {
	return &fakeMembership{
		subs:      make(map[int64][]model.RawRecord),
		plans:     make(map[int64]model.RawRecord),
		planCalls: make(map[int64]int),
	}
}

func (f *fakeMembership) ListSubscriptions(ctx context.Context, userID int64) ([]model.RawRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.subs[userID], nil
}

func (f *fakeMembership) GetPlan(ctx context.Context, planID int64) (model.RawRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.planCalls[planID]++
	p, ok := f.plans[planID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeMembership) ListPlans(ctx context.Context, filter model.PlanFilter) ([]model.RawRecord, error) {
	f.lastQuery = filter
	return f.planList, nil
}

// fakeChecker records the plan ids it was asked about.
type fakeChecker struct {
	member bool
	err    error
	asked  []int64
	calls  int
}

func (f *fakeChecker) IsMemberOfAnyPlan(ctx context.Context, userID int64, planIDs []int64) (bool, error) {
	f.calls++
	f.asked = append([]int64(nil), planIDs...)
	return f.member, f.err
}
