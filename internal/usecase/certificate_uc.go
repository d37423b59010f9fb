package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/domain/ports/repository"
	"learnpress-facade/internal/infra/logging"
)

// Compile-time check
var _ CertificateUseCase = (*certificateUC)(nil)

// CertificateUseCase serves certificate lookups for the REST API.
type CertificateUseCase interface {
	ListForUser(ctx context.Context, userID int64) ([]CertificateView, error)
	Verify(ctx context.Context, code string) (*CertificateView, error)
}

type certificateUC struct {
	certs   repository.CertificateRepository
	users   repository.UserDirectory
	courses repository.CourseDirectory
	log     *zerolog.Logger
}

func NewCertificateUseCase(certs repository.CertificateRepository, users repository.UserDirectory, courses repository.CourseDirectory, logger *zerolog.Logger) *certificateUC {
	return &certificateUC{certs: certs, users: users, courses: courses, log: logger}
}

// ListForUser returns the caller's certificates, newest first, with email visible.
func (c *certificateUC) ListForUser(ctx context.Context, userID int64) ([]CertificateView, error) {
	defer logging.TraceDuration(c.log, "CertificateUC.ListForUser")()

	certs, err := c.certs.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sh := c.newShaper(false)
	out := make([]CertificateView, 0, len(certs))
	for _, cert := range certs {
		out = append(out, sh.shape(ctx, cert))
	}
	return out, nil
}

// Verify resolves a public verification code. The holder's email is always redacted.
func (c *certificateUC) Verify(ctx context.Context, code string) (*CertificateView, error) {
	defer logging.TraceDuration(c.log, "CertificateUC.Verify")()

	cert, err := c.certs.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	v := c.newShaper(true).shape(ctx, cert)
	return &v, nil
}

// shaper memoizes directory lookups for the duration of one call.
type shaper struct {
	uc      *certificateUC
	public  bool
	users   map[int64]*model.User
	courses map[int64]*model.Course
}

func (c *certificateUC) newShaper(public bool) *shaper {
	return &shaper{
		uc:      c,
		public:  public,
		users:   make(map[int64]*model.User),
		courses: make(map[int64]*model.Course),
	}
}

func (s *shaper) shape(ctx context.Context, cert *model.Certificate) CertificateView {
	v := CertificateView{
		ID:      cert.ID,
		Code:    cert.Code,
		FileURL: cert.FileURL,
		Status:  string(cert.Status),
	}
	if u := s.user(ctx, cert.UserID); !u.IsZero() {
		v.User = &UserView{ID: u.ID, Name: u.DisplayName, Email: u.Email}
		if s.public {
			v.User.Email = ""
		}
	}
	if co := s.course(ctx, cert.CourseID); !co.IsZero() {
		v.Course = &CourseView{ID: co.ID, Title: co.Title, Slug: co.Slug, URL: co.URL}
	}
	return v
}

func (s *shaper) user(ctx context.Context, id int64) *model.User {
	if u, ok := s.users[id]; ok {
		return u
	}
	u, err := s.uc.users.FindByID(ctx, id)
	if err != nil {
		s.uc.logLookup(ctx, err, "user", id)
		u = nil
	}
	s.users[id] = u
	return u
}

func (s *shaper) course(ctx context.Context, id int64) *model.Course {
	if co, ok := s.courses[id]; ok {
		return co
	}
	co, err := s.uc.courses.FindByID(ctx, id)
	if err != nil {
		s.uc.logLookup(ctx, err, "course", id)
		co = nil
	}
	s.courses[id] = co
	return co
}

// logLookup stays quiet for deleted accounts and courses.
func (c *certificateUC) logLookup(ctx context.Context, err error, kind string, id int64) {
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	logging.With(ctx, c.log).Warn().Err(err).Str("kind", kind).Int64("id", id).Msg("directory lookup failed; omitting nested object")
}
