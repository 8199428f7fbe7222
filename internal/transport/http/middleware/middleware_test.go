package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appCtx "github.com/baechuer/esemenyrendezo/internal/pkg/context"
	"github.com/baechuer/esemenyrendezo/internal/security"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(HeaderXRequestID))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderXRequestID, "req-123")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, "req-123", seen)
	})
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestAuth(t *testing.T) {
	signer := security.NewHS256("secret", "")
	a := NewAuth(signer)
	tok, err := signer.Sign("u1", "user", time.Hour, time.Now())
	require.NoError(t, err)

	var user string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserID(r)
		w.WriteHeader(http.StatusNoContent)
	})

	cases := []struct {
		name   string
		mw     func(http.Handler) http.Handler
		header string
		status int
		user   string
	}{
		{"require_valid", a.Require, "Bearer " + tok, http.StatusNoContent, "u1"},
		{"require_missing", a.Require, "", http.StatusUnauthorized, ""},
		{"require_wrong_scheme", a.Require, "Basic " + tok, http.StatusUnauthorized, ""},
		{"optional_anonymous", a.Optional, "", http.StatusNoContent, ""},
		{"optional_valid", a.Optional, "Bearer " + tok, http.StatusNoContent, "u1"},
		{"optional_invalid", a.Optional, "Bearer junk", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			tc.mw(next).ServeHTTP(rr, req)
			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, tc.user, user)
		})
	}
}
