package jwt_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/jwt"
)

type failingDenylist struct{}

func (failingDenylist) Revoke(context.Context, string, time.Time) error { return nil }
func (failingDenylist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	svc := newService(t)
	token, issued, err := svc.Issue("u1", "acme")
	require.NoError(t, err)

	protected := func(mw func(http.Handler) http.Handler) http.Handler {
		return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := jwt.GetClaims(r.Context())
			require.True(t, ok)
			raw, ok := jwt.GetToken(r.Context())
			require.True(t, ok)
			assert.Equal(t, token, raw)
			assert.Equal(t, "u1", claims.UserID)
			w.WriteHeader(http.StatusOK)
		}))
	}

	request := func(auth string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			r.Header.Set("Authorization", auth)
		}
		return r
	}

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"tampered", "Bearer " + token + "x", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			protected(jwt.Middleware(svc)).ServeHTTP(rec, request(tt.auth))
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	t.Run("revoked token", func(t *testing.T) {
		t.Parallel()
		deny := jwt.NewMemoryDenylist()
		require.NoError(t, deny.Revoke(context.Background(), issued.ID, time.Now().Add(time.Hour)))

		var got error
		mw := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
			Service:  svc,
			Denylist: deny,
			ErrorHandler: func(w http.ResponseWriter, _ *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusUnauthorized)
			},
		})
		rec := httptest.NewRecorder()
		protected(mw).ServeHTTP(rec, request("Bearer "+token))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.ErrorIs(t, got, jwt.ErrRevokedToken)
	})

	t.Run("denylist failure rejects", func(t *testing.T) {
		t.Parallel()
		mw := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{Service: svc, Denylist: failingDenylist{}})
		rec := httptest.NewRecorder()
		protected(mw).ServeHTTP(rec, request("Bearer "+token))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("skip", func(t *testing.T) {
		t.Parallel()
		mw := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
			Service: svc,
			Skip:    func(r *http.Request) bool { return r.URL.Path == "/public" },
		})
		rec := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cookie fallback", func(t *testing.T) {
		t.Parallel()
		mw := jwt.MiddlewareWithConfig(jwt.MiddlewareConfig{
			Service:   svc,
			Extractor: jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor("token")),
		})
		r := request("")
		r.AddCookie(&http.Cookie{Name: "token", Value: token})
		rec := httptest.NewRecorder()
		protected(mw).ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMemoryDenylist(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	deny := jwt.NewMemoryDenylist()

	require.NoError(t, deny.Revoke(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, deny.Revoke(ctx, "past", time.Now().Add(-time.Hour)))

	revoked, err := deny.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = deny.IsRevoked(ctx, "past")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = deny.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)
}
