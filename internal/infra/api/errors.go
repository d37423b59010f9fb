package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/infra/logging"
)

type problem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// errorCase is the code and message key reported for one error class.
type errorCase struct {
	code   string
	msgKey string
}

type errorCases map[error]errorCase

// sentinels are checked in order; the first match wins.
var sentinels = []struct {
	err    error
	status int
	errorCase
}{
	{domain.ErrUnauthorized, http.StatusUnauthorized, errorCase{"rest_cannot_access", "rest_cannot_access"}},
	{domain.ErrForbidden, http.StatusForbidden, errorCase{"rest_cannot_access", "rest_forbidden_subscription"}},
	{domain.ErrNotFound, http.StatusNotFound, errorCase{"rest_not_found", "rest_no_route"}},
	{domain.ErrInvalidArgument, http.StatusBadRequest, errorCase{"rest_invalid_param", "rest_invalid_param"}},
	{domain.ErrServiceUnavailable, http.StatusServiceUnavailable, errorCase{"rest_pms_not_active", "rest_pms_not_active"}},
	{domain.ErrRateLimited, http.StatusTooManyRequests, errorCase{"rest_rate_limited", "rest_rate_limited"}},
	{domain.ErrStoreUnavailable, http.StatusInternalServerError, errorCase{"rest_internal_error", "rest_internal_error"}},
}

var internalError = errorCase{"rest_internal_error", "rest_internal_error"}

// paramError names the request parameter that failed validation.
type paramError struct{ name string }

func (e paramError) Error() string { return "invalid parameter " + e.name }
func (e paramError) Unwrap() error { return domain.ErrInvalidArgument }

// fail writes err as a problem document. overrides replace the default code
// and message for specific sentinels on the calling route.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, overrides errorCases) {
	status, ec := http.StatusInternalServerError, internalError
	for _, c := range sentinels {
		if errors.Is(err, c.err) {
			status, ec = c.status, c.errorCase
			if o, ok := overrides[c.err]; ok {
				ec = o
			}
			break
		}
	}

	l := logging.With(r.Context(), s.log)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	var args []any
	var pe paramError
	if errors.As(err, &pe) {
		args = append(args, pe.name)
	} else if ec.msgKey == "rest_invalid_param" {
		args = append(args, "request")
	}
	writeJSON(w, status, problem{Code: ec.code, Message: s.tr.T(ec.msgKey, args...), Status: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
