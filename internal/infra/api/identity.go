package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"learnpress-facade/internal/config"
	"learnpress-facade/internal/domain"
	"learnpress-facade/internal/domain/model"
)

// UserClaims are issued by the site's identity system. The user id is carried
// in user_id or, failing that, in a numeric sub.
type UserClaims struct {
	UserID any `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// Identity verifies bearer tokens; it never issues them.
type Identity struct {
	secret []byte
	issuer string
	leeway time.Duration
}

func NewIdentity(cfg config.AuthConfig) *Identity {
	return &Identity{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, leeway: cfg.Leeway}
}

// Parse validates tok and returns the caller it identifies.
func (a *Identity) Parse(tok string) (*model.Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.leeway),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &UserClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	id := model.CoerceInt(claims.UserID)
	if id <= 0 {
		id, _ = strconv.ParseInt(claims.Subject, 10, 64)
	}
	if id <= 0 {
		return nil, fmt.Errorf("%w: token has no user id", domain.ErrUnauthorized)
	}
	return &model.Principal{UserID: id}, nil
}

var errNoToken = errors.New("missing token")

// bearerToken extracts the token from an Authorization header.
func bearerToken(hdr string) (string, error) {
	if hdr == "" {
		return "", errNoToken
	}
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return "", fmt.Errorf("%w: malformed authorization header", domain.ErrUnauthorized)
	}
	tok := strings.TrimSpace(hdr[7:])
	if tok == "" {
		return "", fmt.Errorf("%w: empty bearer token", domain.ErrUnauthorized)
	}
	return tok, nil
}
