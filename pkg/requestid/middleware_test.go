package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/requestid"
)

func captureID(t *testing.T, mw func(http.Handler) http.Handler, header string) (string, *httptest.ResponseRecorder) {
	t.Helper()
	var seen string
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestid.FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return seen, rec
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("generates an id", func(t *testing.T) {
		t.Parallel()
		id, rec := captureID(t, requestid.Middleware, "")
		require.NotEmpty(t, id)
		assert.Equal(t, id, rec.Header().Get(requestid.Header))
		parsed, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(7), parsed.Version())
	})

	t.Run("reuses a valid client id", func(t *testing.T) {
		t.Parallel()
		id, rec := captureID(t, requestid.Middleware, "client-id_123")
		assert.Equal(t, "client-id_123", id)
		assert.Equal(t, "client-id_123", rec.Header().Get(requestid.Header))
	})

	t.Run("replaces invalid client ids", func(t *testing.T) {
		t.Parallel()
		for _, bad := range []string{"has space", "semi;colon", strings.Repeat("a", 129)} {
			id, _ := captureID(t, requestid.Middleware, bad)
			assert.NotEqual(t, bad, id)
			assert.NotEmpty(t, id)
		}
	})

	t.Run("custom generator and untrusted clients", func(t *testing.T) {
		t.Parallel()
		mw := requestid.New(requestid.WithGenerator(func() string { return "fixed" }), requestid.WithoutClientIDs())
		id, _ := captureID(t, mw, "client-id")
		assert.Equal(t, "fixed", id)
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := requestid.LoggerExtractor()
	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(requestid.WithContext(context.Background(), "abc"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
