package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"learnpress-facade/internal/config"
	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/infra/i18n"
	"learnpress-facade/internal/infra/ratelimit"
	"learnpress-facade/internal/usecase"
)

// Server exposes the certificate and subscription lookups over HTTP.
type Server struct {
	certs   usecase.CertificateUseCase
	subs    usecase.SubscriptionUseCase
	ident   *Identity
	limiter ratelimit.Limiter
	tr      *i18n.Translator
	cfg     config.HTTPConfig
	log     *zerolog.Logger
}

// NewServer wires the handlers. limiter may be nil to disable throttling.
func NewServer(
	certs usecase.CertificateUseCase,
	subs usecase.SubscriptionUseCase,
	ident *Identity,
	limiter ratelimit.Limiter,
	tr *i18n.Translator,
	cfg config.HTTPConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		certs:   certs,
		subs:    subs,
		ident:   ident,
		limiter: limiter,
		tr:      tr,
		cfg:     cfg,
		log:     logger,
	}
}

// Routes builds the chi router with the full middleware chain.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	if s.cfg.BehindProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(TraceID(s.log), RequestLog(s.log), Recover(s.log), CORS(s.cfg.AllowedOrigins))
	if s.cfg.RequestTimeout > 0 {
		r.Use(Timeout(s.cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, domain.ErrNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, domain.ErrNotFound, nil)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route(s.cfg.Namespace, func(r chi.Router) {
		r.Use(s.Authenticate)

		r.With(s.RequireAuth("rest_cannot_access")).
			Get("/certificates/my", s.handleMyCertificates)
		r.With(s.RateLimit(s.limiter, "verify")).
			Get("/certificates/code/{code:[a-zA-Z0-9]+}", s.handleVerify)

		r.With(s.RequireAuth("rest_cannot_access_subscription")).
			Get("/subscriptions/my", s.handleMySubscription)
		r.With(s.RequireAuth("rest_cannot_access_subscription")).
			Get("/subscriptions/user/{userID:[0-9]+}", s.handleUserSubscription)
		r.Get("/subscriptions/plans", s.handlePlans)
	})
	return r
}

func (s *Server) handleMyCertificates(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	out, err := s.certs.ListForUser(r.Context(), p.UserID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	v, err := s.certs.Verify(r.Context(), code)
	if err != nil {
		s.fail(w, r, err, errorCases{
			domain.ErrNotFound:        {code: "rest_certificate_invalid", msgKey: "rest_certificate_invalid"},
			domain.ErrInvalidArgument: {code: "rest_certificate_invalid", msgKey: "rest_certificate_required"},
		})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleMySubscription(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFrom(r.Context())
	v, err := s.subs.StatusForUser(r.Context(), p.UserID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleUserSubscription checks, in order: a positive id, self-or-admin,
// that the user exists, then that the membership service is available.
func (s *Server) handleUserSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		s.fail(w, r, paramError{name: "user_id"}, nil)
		return
	}
	if err := s.subs.CanView(ctx, PrincipalFrom(ctx), userID); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	exists, err := s.subs.UserExists(ctx, userID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if !exists {
		s.fail(w, r, domain.ErrNotFound, errorCases{
			domain.ErrNotFound: {code: "rest_user_invalid", msgKey: "rest_user_invalid"},
		})
		return
	}
	v, err := s.subs.StatusForUser(ctx, userID)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePlans(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePlanFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	v, err := s.subs.ListPlans(r.Context(), filter)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// parsePlanFilter accepts include[]=1&include[]=2, repeated include=1, and
// comma lists. only_active takes 1/0/true/false or an empty value.
func parsePlanFilter(q url.Values) (model.PlanFilter, error) {
	var f model.PlanFilter
	if q.Has("only_active") {
		switch strings.ToLower(strings.TrimSpace(q.Get("only_active"))) {
		case "1", "true", "yes":
			f.OnlyActive = true
		case "", "0", "false", "no":
		default:
			return f, paramError{name: "only_active"}
		}
	}
	var err error
	if f.Include, err = parseIDs(q, "include"); err != nil {
		return f, err
	}
	if f.Exclude, err = parseIDs(q, "exclude"); err != nil {
		return f, err
	}
	return f, nil
}

func parseIDs(q url.Values, name string) ([]int64, error) {
	var out []int64
	for _, key := range []string{name, name + "[]"} {
		for _, v := range q[key] {
			for _, part := range strings.Split(v, ",") {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				id, err := strconv.ParseInt(part, 10, 64)
				if err != nil {
					return nil, paramError{name: name}
				}
				out = append(out, id)
			}
		}
	}
	return out, nil
}
