package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/ratelimiter"
	"github.com/webix/udirdlaga/pkg/tenant"
)

func tenantRequest(key string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/tenant/"+key+"/auth/me", nil)
	return req.WithContext(tenant.WithContext(req.Context(), &tenant.Context[struct{}]{Key: key}))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	rl, err := ratelimiter.New(ratelimiter.Config{Rate: 1, Burst: 2})
	require.NoError(t, err)

	h := ratelimiter.Middleware(rl, ratelimiter.TenantKey)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, tenantRequest("acme"))
		assert.Equal(t, want, rec.Code, "request %d", i)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
		if want == http.StatusTooManyRequests {
			assert.Equal(t, "1", rec.Header().Get("Retry-After"))
			assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		}
	}

	t.Run("other tenant unaffected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, tenantRequest("globex"))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no key bypasses the limiter", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	})
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, errors.New("backend down")
}

func (failingLimiter) AllowN(context.Context, string, int) (*ratelimiter.Result, error) {
	return nil, errors.New("backend down")
}

func TestMiddleware_Errors(t *testing.T) {
	t.Parallel()

	var got error
	h := ratelimiter.Middleware(failingLimiter{}, func(*http.Request) string { return "k" },
		ratelimiter.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
			got = err
			w.WriteHeader(http.StatusServiceUnavailable)
		}),
	)(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.EqualError(t, got, "backend down")
}

func TestKeyFuncs(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	assert.Equal(t, "ip:10.0.0.7", ratelimiter.ClientIP(req))

	req.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "ip:203.0.113.9", ratelimiter.ClientIP(req))

	assert.Empty(t, ratelimiter.TenantKey(req))
	assert.Equal(t, "tenant:acme", ratelimiter.TenantKey(tenantRequest("acme")))

	composite := ratelimiter.Composite(ratelimiter.TenantKey, ratelimiter.ClientIP)
	assert.Equal(t, "ip:203.0.113.9", composite(req))

	treq := tenantRequest("acme")
	treq.Header.Set("X-Real-IP", "203.0.113.9")
	assert.Equal(t, "tenant:acme:ip:203.0.113.9", composite(treq))

	long := ratelimiter.Composite(func(*http.Request) string { return strings.Repeat("x", 100) })
	got := long(req)
	assert.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 64)

	assert.Empty(t, ratelimiter.Composite()(req))
}
