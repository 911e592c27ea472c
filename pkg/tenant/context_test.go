package tenant_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/tenant"
)

type models struct {
	name string
}

func TestContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		tc := &tenant.Context[*models]{Key: "acme", Database: "webix_acme", Models: &models{name: "acme"}}
		ctx := tenant.WithContext(context.Background(), tc)

		got, ok := tenant.FromContext[*models](ctx)
		require.True(t, ok)
		assert.Same(t, tc, got)

		key, ok := tenant.KeyFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "acme", key)
	})

	t.Run("empty context", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()

		_, ok := tenant.FromContext[*models](ctx)
		assert.False(t, ok)
		_, ok = tenant.KeyFromContext(ctx)
		assert.False(t, ok)
		_, ok = tenant.PrincipalFromContext(ctx)
		assert.False(t, ok)
		_, ok = tenant.OrganizationFromContext(ctx)
		assert.False(t, ok)
		assert.Panics(t, func() { tenant.MustFromContext[*models](ctx) })
	})

	t.Run("wrong model type is not found", func(t *testing.T) {
		t.Parallel()
		ctx := tenant.WithContext(context.Background(), &tenant.Context[*models]{Key: "acme"})

		_, ok := tenant.FromContext[string](ctx)
		assert.False(t, ok)
		key, ok := tenant.KeyFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "acme", key)
	})

	t.Run("organization", func(t *testing.T) {
		t.Parallel()
		info := &tenant.Info{ID: "1", Key: "acme", Active: true}
		ctx := tenant.WithContext(context.Background(), &tenant.Context[*models]{Key: "acme", Organization: info})

		got, ok := tenant.OrganizationFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, info, got)
	})
}

func TestWithPrincipal(t *testing.T) {
	t.Parallel()

	t.Run("copies the tenant context", func(t *testing.T) {
		t.Parallel()
		original := &tenant.Context[*models]{Key: "acme", Models: &models{}}
		base := tenant.WithContext(context.Background(), original)

		ctx, err := tenant.WithPrincipal(base, &tenant.Principal{ID: "u1", Username: "jane", Role: "admin"})
		require.NoError(t, err)

		p, ok := tenant.PrincipalFromContext(ctx)
		require.True(t, ok)
		assert.Equal(t, "jane", p.Username)

		updated := tenant.MustFromContext[*models](ctx)
		assert.NotSame(t, original, updated)
		assert.Same(t, original.Models, updated.Models)
		assert.Nil(t, original.Principal)

		_, ok = tenant.PrincipalFromContext(base)
		assert.False(t, ok)
	})

	t.Run("requires a tenant", func(t *testing.T) {
		t.Parallel()
		ctx, err := tenant.WithPrincipal(context.Background(), &tenant.Principal{ID: "u1"})
		assert.ErrorIs(t, err, tenant.ErrNoTenantInContext)
		assert.NotNil(t, ctx)
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	extract := tenant.LoggerExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	attr, ok := extract(tenant.WithContext(context.Background(), &tenant.Context[*models]{Key: "acme"}))
	require.True(t, ok)
	assert.Equal(t, "tenant", attr.Key)
	assert.Equal(t, "acme", attr.Value.String())
}
