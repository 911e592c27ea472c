package jwt_test

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/jwt"
)

const secret = "0123456789abcdef0123456789abcdef"

func newService(t *testing.T, opts ...jwt.Option) *jwt.Service {
	t.Helper()
	svc, err := jwt.New([]byte(secret), opts...)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := jwt.New(nil)
	assert.ErrorIs(t, err, jwt.ErrMissingSigningKey)

	svc, err := jwt.NewFromConfig(jwt.Config{Secret: secret, TTL: time.Hour, Issuer: "test"})
	require.NoError(t, err)
	assert.Equal(t, time.Hour, svc.TTL())

	svc = newService(t)
	assert.Equal(t, 7*24*time.Hour, svc.TTL())
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, jwt.WithIssuer("webix"))

		token, issued, err := svc.Issue("64f1c2", "acme")
		require.NoError(t, err)
		assert.Len(t, strings.Split(token, "."), 3)
		assert.NotEmpty(t, issued.ID)

		claims, err := svc.ParseClaims(token)
		require.NoError(t, err)
		assert.Equal(t, "64f1c2", claims.UserID)
		assert.Equal(t, "acme", claims.Subdomain)
		assert.Equal(t, issued.ID, claims.ID)
		assert.Equal(t, "webix", claims.Issuer)
	})

	t.Run("every token has its own id", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		_, a, err := svc.Issue("u1", "")
		require.NoError(t, err)
		_, b, err := svc.Issue("u1", "")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		now := time.Now()
		issuer := newService(t, jwt.WithTTL(time.Minute), jwt.WithClock(func() time.Time { return now }))
		token, _, err := issuer.Issue("u1", "acme")
		require.NoError(t, err)

		later := newService(t, jwt.WithClock(func() time.Time { return now.Add(2 * time.Minute) }))
		_, err = later.ParseClaims(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		t.Parallel()
		token, _, err := newService(t).Issue("u1", "acme")
		require.NoError(t, err)

		other, err := jwt.New([]byte("another-secret-another-secret-00"))
		require.NoError(t, err)
		_, err = other.ParseClaims(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		token, _, err := newService(t, jwt.WithIssuer("a")).Issue("u1", "")
		require.NoError(t, err)
		_, err = newService(t, jwt.WithIssuer("b")).ParseClaims(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("other algorithm", func(t *testing.T) {
		t.Parallel()
		claims := &jwt.Claims{UserID: "u1", RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte(secret))
		require.NoError(t, err)

		_, err = newService(t).ParseClaims(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("missing id claim", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		token, err := svc.Generate(&jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		}})
		require.NoError(t, err)

		_, err = svc.ParseClaims(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidClaims)
	})

	t.Run("missing expiry", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		token, err := svc.Generate(&jwt.Claims{UserID: "u1"})
		require.NoError(t, err)

		_, err = svc.ParseClaims(token)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		svc := newService(t)
		_, err := svc.ParseClaims("not.a.token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
		_, err = svc.ParseClaims("")
		assert.ErrorIs(t, err, jwt.ErrMissingToken)
		_, err = svc.Generate(nil)
		assert.ErrorIs(t, err, jwt.ErrMissingClaims)
	})
}
