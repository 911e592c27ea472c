package tenantdb_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/tenantdb"
)

type testModels struct {
	conn *tenantdb.Connection
}

func newBinder(t *testing.T) (*tenantdb.Registry, *tenantdb.Binder[*testModels], *atomic.Int32) {
	t.Helper()
	reg, _ := newRegistry(t)
	var builds atomic.Int32
	binder := tenantdb.NewBinder(reg, func(c *tenantdb.Connection) (*testModels, error) {
		builds.Add(1)
		return &testModels{conn: c}, nil
	})
	return reg, binder, &builds
}

func TestBinder_Models(t *testing.T) {
	t.Parallel()

	t.Run("fails before connection is ensured", func(t *testing.T) {
		t.Parallel()
		_, binder, builds := newBinder(t)

		_, err := binder.Models("acme")
		require.ErrorIs(t, err, tenantdb.ErrNoConnection)
		assert.Zero(t, builds.Load())
	})

	t.Run("binds to the ensured connection", func(t *testing.T) {
		t.Parallel()
		reg, binder, _ := newBinder(t)

		conn, err := reg.EnsureTenant(context.Background(), "acme")
		require.NoError(t, err)

		models, err := binder.Models("acme")
		require.NoError(t, err)
		assert.Same(t, conn, models.conn)
	})

	t.Run("caches per key regardless of case", func(t *testing.T) {
		t.Parallel()
		reg, binder, builds := newBinder(t)

		_, err := reg.EnsureTenant(context.Background(), "acme")
		require.NoError(t, err)

		first, err := binder.Models("acme")
		require.NoError(t, err)
		second, err := binder.Models("ACME")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, int32(1), builds.Load())
		assert.Equal(t, 1, binder.Len())
	})

	t.Run("invalid key", func(t *testing.T) {
		t.Parallel()
		_, binder, _ := newBinder(t)

		_, err := binder.Models("a")
		assert.ErrorIs(t, err, tenantdb.ErrInvalidTenantKey)
	})

	t.Run("factory error is not cached", func(t *testing.T) {
		t.Parallel()
		reg, _ := newRegistry(t)
		fail := true
		bindErr := errors.New("collection missing")
		binder := tenantdb.NewBinder(reg, func(c *tenantdb.Connection) (*testModels, error) {
			if fail {
				return nil, bindErr
			}
			return &testModels{conn: c}, nil
		})

		_, err := reg.EnsureTenant(context.Background(), "acme")
		require.NoError(t, err)

		_, err = binder.Models("acme")
		require.ErrorIs(t, err, bindErr)
		assert.Zero(t, binder.Len())

		fail = false
		models, err := binder.Models("acme")
		require.NoError(t, err)
		assert.NotNil(t, models)
	})
}

func TestBinder_InvalidatedByRegistry(t *testing.T) {
	t.Parallel()

	t.Run("close tenant", func(t *testing.T) {
		t.Parallel()
		reg, binder, _ := newBinder(t)
		ctx := context.Background()

		_, err := reg.EnsureTenant(ctx, "acme")
		require.NoError(t, err)
		_, err = binder.Models("acme")
		require.NoError(t, err)

		require.NoError(t, reg.CloseTenant(ctx, "acme"))

		assert.Zero(t, binder.Len())
		_, ok := reg.Tenant("acme")
		assert.False(t, ok)
		_, err = binder.Models("acme")
		assert.ErrorIs(t, err, tenantdb.ErrNoConnection)
	})

	t.Run("close all then reopen binds the fresh connection", func(t *testing.T) {
		t.Parallel()
		reg, binder, builds := newBinder(t)
		ctx := context.Background()

		_, err := reg.EnsureTenant(ctx, "acme")
		require.NoError(t, err)
		before, err := binder.Models("acme")
		require.NoError(t, err)

		require.NoError(t, reg.CloseAll(ctx))
		assert.Zero(t, binder.Len())

		conn, err := reg.EnsureTenant(ctx, "acme")
		require.NoError(t, err)
		after, err := binder.Models("acme")
		require.NoError(t, err)

		assert.NotSame(t, before, after)
		assert.Same(t, conn, after.conn)
		assert.Greater(t, after.conn.Generation(), before.conn.Generation())
		assert.Equal(t, int32(2), builds.Load())
	})

	t.Run("explicit invalidate rebuilds", func(t *testing.T) {
		t.Parallel()
		reg, binder, builds := newBinder(t)

		_, err := reg.EnsureTenant(context.Background(), "acme")
		require.NoError(t, err)
		first, err := binder.Models("acme")
		require.NoError(t, err)

		binder.Invalidate("acme")
		second, err := binder.Models("acme")
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Same(t, first.conn, second.conn)
		assert.Equal(t, int32(2), builds.Load())

		binder.InvalidateAll()
		assert.Zero(t, binder.Len())
	})
}

func TestBinder_ConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	reg, binder, builds := newBinder(t)
	_, err := reg.EnsureTenant(context.Background(), "acme")
	require.NoError(t, err)

	const n = 32
	results := make([]*testModels, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := binder.Models("acme")
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	for i := range n {
		assert.Same(t, results[0], results[i])
	}
}
