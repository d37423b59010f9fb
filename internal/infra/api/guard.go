package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
	"learnpress-facade/internal/infra/logging"
	"learnpress-facade/internal/infra/metrics"
	"learnpress-facade/internal/infra/ratelimit"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const TraceHeader = "X-Trace-Id"

type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// TraceID reuses a well-formed incoming trace id or mints a new one.
func TraceID(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tid := r.Header.Get(TraceHeader)
			if _, err := uuid.Parse(tid); err != nil {
				tid = uuid.NewString()
			}
			w.Header().Set(TraceHeader, tid)
			ctx := logging.WithTraceID(r.Context(), tid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequestLog(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &respWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(ww, r)

			route := ""
			if rc := chi.RouteContext(r.Context()); rc != nil {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)
			metrics.ObserveHTTPRequest(route, r.Method, ww.status, elapsed)

			l := logging.With(ww.ctx(r), logger)
			l.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("route", route).
				Int("status", ww.status).
				Dur("duration", elapsed).
				Msg("http_request")
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
	userID int64
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// ctx carries the authenticated user id back out to the request log.
func (w *respWriter) ctx(r *http.Request) context.Context {
	if w.userID > 0 {
		return logging.WithUserID(r.Context(), w.userID)
	}
	return r.Context()
}

func Recover(logger *zerolog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l := logging.With(r.Context(), logger)
					l.Error().Interface("panic", rec).Msg("panic recovered")
					writeJSON(w, http.StatusInternalServerError, problem{
						Code:    internalError.code,
						Message: "internal error",
						Status:  http.StatusInternalServerError,
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func Timeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORS allows read-only cross-origin calls from the configured origins.
func CORS(origins []string) Middleware {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowed["*"] || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
				w.Header().Add("Vary", "Origin")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey string

const (
	ctxPrincipal ctxKey = "principal"
	ctxAuthErr   ctxKey = "auth_error"
)

func withPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFrom returns the authenticated caller, or nil for anonymous requests.
func PrincipalFrom(ctx context.Context) *model.Principal {
	p, _ := ctx.Value(ctxPrincipal).(*model.Principal)
	return p
}

// Authenticate resolves the bearer token. Requests without a valid one stay
// anonymous; a bad token is kept so RequireAuth can report it.
func (s *Server) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := bearerToken(r.Header.Get("Authorization"))
		if errors.Is(err, errNoToken) {
			next.ServeHTTP(w, r)
			return
		}
		var p *model.Principal
		if err == nil {
			p, err = s.ident.Parse(tok)
		}
		if err != nil {
			logging.With(r.Context(), s.log).Debug().Err(err).Msg("ignoring invalid bearer token")
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxAuthErr, err)))
			return
		}
		if rw, ok := w.(*respWriter); ok {
			rw.userID = p.UserID
		}
		ctx := logging.WithUserID(withPrincipal(r.Context(), p), p.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects anonymous callers, including those whose token was
// invalid, with msgKey as the message.
func (s *Server) RequireAuth(msgKey string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if PrincipalFrom(r.Context()).IsZero() {
				err, _ := r.Context().Value(ctxAuthErr).(error)
				if err == nil {
					err = domain.ErrUnauthorized
				}
				s.fail(w, r, err, errorCases{
					domain.ErrUnauthorized: {code: "rest_cannot_access", msgKey: msgKey},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit throttles per client IP. Limiter failures let the request through.
func (s *Server) RateLimit(limiter ratelimit.Limiter, name string) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, err := limiter.Allow(r.Context(), clientIP(r))
			if err != nil {
				logging.With(r.Context(), s.log).Warn().Err(err).Str("limiter", name).Msg("rate limiter unavailable; allowing request")
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				metrics.IncRateLimitRejection(name)
				w.Header().Set("Retry-After", "60")
				s.fail(w, r, domain.ErrRateLimited, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
