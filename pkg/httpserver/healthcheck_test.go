package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/httpserver"
)

func probe(t *testing.T, h http.Handler) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()
	code, body := probe(t, httpserver.LivenessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", body["status"])
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	okCheck := httpserver.Check{Name: "mongo", Fn: func(context.Context) error { return nil }}

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		code, body := probe(t, httpserver.ReadinessHandler(nil, time.Second, okCheck))
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ready", body["status"])
		assert.Equal(t, map[string]any{"mongo": "ok"}, body["checks"])
	})

	t.Run("not ready hides error details", func(t *testing.T) {
		t.Parallel()
		failing := httpserver.Check{Name: "redis", Fn: func(context.Context) error {
			return errors.New("dial tcp 10.0.0.1:6379: secret detail")
		}}
		code, body := probe(t, httpserver.ReadinessHandler(nil, time.Second, okCheck, failing))
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "not_ready", body["status"])
		assert.Equal(t, map[string]any{"mongo": "ok", "redis": "error"}, body["checks"])
	})

	t.Run("checks see the timeout", func(t *testing.T) {
		t.Parallel()
		slow := httpserver.Check{Name: "slow", Fn: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}}
		code, _ := probe(t, httpserver.ReadinessHandler(nil, 10*time.Millisecond, slow))
		assert.Equal(t, http.StatusServiceUnavailable, code)
	})
}
