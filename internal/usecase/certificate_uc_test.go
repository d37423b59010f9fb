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

func newCertificateFixture() (*memCertRepo, *memUserDir, *memCourseDir) {
	certs := &memCertRepo{certs: []*model.Certificate{
		{ID: 5, UserID: 7, CourseID: 3, Code: "AB12", FileURL: "https://x.test/learn-press-cert/AB12.png", Status: model.CertificateStatusActive},
		{ID: 4, UserID: 7, CourseID: 99, Code: "GONE", Status: model.CertificateStatusActive},
		{ID: 3, UserID: 8, CourseID: 3, Code: "ORPHAN", Status: model.CertificateStatusActive},
	}}
	users := newMemUserDir(&model.User{ID: 7, DisplayName: "Ada", Email: "ada@example.com"})
	courses := &memCourseDir{courses: map[int64]*model.Course{
		3: {ID: 3, Title: "Intro to Go", Slug: "intro-to-go", URL: "https://x.test/courses/intro-to-go/"},
	}}
	return certs, users, courses
}

func TestCertificateUseCase_ListForUser(t *testing.T) {
	ctx := context.Background()
	certs, users, courses := newCertificateFixture()
	uc := NewCertificateUseCase(certs, users, courses, logging.Nop())

	got, err := uc.ListForUser(ctx, 7)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 certificates, got %d", len(got))
	}
	first := got[0]
	if first.ID != 5 || first.Code != "AB12" || first.Status != "active" {
		t.Errorf("unexpected certificate: %+v", first)
	}
	if first.User == nil || first.User.Email != "ada@example.com" {
		t.Errorf("owner must see their email, got %+v", first.User)
	}
	if first.Course == nil || first.Course.Slug != "intro-to-go" {
		t.Errorf("unexpected course: %+v", first.Course)
	}
	if got[1].Course != nil {
		t.Errorf("deleted course must be omitted, got %+v", got[1].Course)
	}
	if users.calls != 1 {
		t.Errorf("expected one user lookup per call, got %d", users.calls)
	}
}

func TestCertificateUseCase_ListForUser_Empty(t *testing.T) {
	certs, users, courses := newCertificateFixture()
	uc := NewCertificateUseCase(certs, users, courses, logging.Nop())

	got, err := uc.ListForUser(context.Background(), 1234)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestCertificateUseCase_Verify(t *testing.T) {
	ctx := context.Background()
	certs, users, courses := newCertificateFixture()
	uc := NewCertificateUseCase(certs, users, courses, logging.Nop())

	t.Run("public verification redacts email", func(t *testing.T) {
		v, err := uc.Verify(ctx, "AB12")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if v.User == nil || v.User.Name != "Ada" {
			t.Fatalf("expected holder name, got %+v", v.User)
		}
		if v.User.Email != "" {
			t.Errorf("email must be redacted on public verification, got %q", v.User.Email)
		}
	})

	t.Run("deleted account omits user", func(t *testing.T) {
		v, err := uc.Verify(ctx, "ORPHAN")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if v.User != nil {
			t.Errorf("expected user to be omitted, got %+v", v.User)
		}
		if v.Course == nil {
			t.Error("expected course to be present")
		}
	})

	t.Run("unknown code", func(t *testing.T) {
		if _, err := uc.Verify(ctx, "NOPE"); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("directory failures are not fatal", func(t *testing.T) {
		failing := newMemUserDir()
		failing.err = domain.ErrStoreUnavailable
		uc := NewCertificateUseCase(certs, failing, courses, logging.Nop())
		v, err := uc.Verify(ctx, "AB12")
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if v.User != nil {
			t.Errorf("expected user to be omitted, got %+v", v.User)
		}
	})

	t.Run("store failures propagate", func(t *testing.T) {
		uc := NewCertificateUseCase(&memCertRepo{err: domain.ErrStoreUnavailable}, users, courses, logging.Nop())
		if _, err := uc.Verify(ctx, "AB12"); !errors.Is(err, domain.ErrStoreUnavailable) {
			t.Fatalf("expected ErrStoreUnavailable, got %v", err)
		}
	})
}
