package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baechuer/esemenyrendezo/internal/domain"
	"github.com/baechuer/esemenyrendezo/internal/logger"
	"github.com/baechuer/esemenyrendezo/internal/security"
	"github.com/baechuer/esemenyrendezo/internal/transport/http/response"
)

type ctxKey string

const (
	ctxUserID ctxKey = "user_id"
	ctxRole   ctxKey = "role"
)

type TokenVerifier interface {
	VerifyAccessToken(token string) (security.TokenClaims, error)
}

// Auth resolves the caller identity from a bearer token. The favorites flow
// only consumes the user id; it never manages authentication.
type Auth struct {
	verifier TokenVerifier
}

func NewAuth(v TokenVerifier) *Auth {
	return &Auth{verifier: v}
}

// Require rejects requests without a valid token.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.parse(r)
		if err != nil {
			logger.WithCtx(r.Context()).Debug().Err(err).Msg("auth rejected")
			response.Err(w, r, domain.ErrNotAuthenticated("login required"))
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}

// Optional attaches identity when a valid token is present and lets anonymous requests through.
// A present but invalid token is still rejected.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(r.Header.Get("Authorization")) == "" {
			next.ServeHTTP(w, r)
			return
		}
		a.Require(next).ServeHTTP(w, r)
	})
}

func (a *Auth) parse(r *http.Request) (security.TokenClaims, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(h, "Bearer ") {
		return security.TokenClaims{}, security.ErrTokenInvalid
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return a.verifier.VerifyAccessToken(raw)
}

func withClaims(ctx context.Context, c security.TokenClaims) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, c.UserID)
	return context.WithValue(ctx, ctxRole, c.Role)
}

// WithUser is for tests and internal callers that already know the identity.
func WithUser(ctx context.Context, userID string) context.Context {
	return withClaims(ctx, security.TokenClaims{UserID: userID, Role: "user"})
}

func UserID(r *http.Request) string {
	if v, ok := r.Context().Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func Role(r *http.Request) string {
	if v, ok := r.Context().Value(ctxRole).(string); ok {
		return v
	}
	return ""
}
