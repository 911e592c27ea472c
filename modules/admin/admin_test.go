package admin_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/webix/udirdlaga/modules/admin"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/rbac"
	"github.com/webix/udirdlaga/pkg/validator"
)

type memAdmins struct {
	mu     sync.Mutex
	admins map[string]*admin.Admin
}

func newMemAdmins() *memAdmins { return &memAdmins{admins: map[string]*admin.Admin{}} }

func (s *memAdmins) FindByUsername(_ context.Context, username string) (*admin.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memAdmins) FindByID(_ context.Context, id string) (*admin.Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *memAdmins) Create(_ context.Context, a *admin.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.admins {
		if cur.Username == a.Username || cur.Email == a.Email {
			return admin.ErrAdminExists
		}
	}
	if a.ID.IsZero() {
		a.ID = bson.NewObjectID()
	}
	cp := *a
	s.admins[a.ID.Hex()] = &cp
	return nil
}

func (s *memAdmins) SaveLockState(_ context.Context, id string, state auth.LockState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.admins[id]
	a.LoginAttempts, a.LockUntil = state.Attempts, state.LockUntil
	return nil
}

func (s *memAdmins) RecordLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[id].LastLogin = &at
	return nil
}

func (s *memAdmins) update(id string, fn func(*admin.Admin)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.admins[id])
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestAdmin(t *testing.T) {
	t.Parallel()

	lock := time.Now().Add(time.Hour)
	a := &admin.Admin{
		ID:            bson.NewObjectID(),
		Username:      "root",
		Email:         "root@webix.com",
		PasswordHash:  "hash",
		Role:          rbac.RoleSuperAdmin,
		IsActive:      true,
		LoginAttempts: 5,
		LockUntil:     &lock,
	}
	require.NoError(t, a.Validate())
	assert.True(t, a.IsLocked(time.Now()))
	assert.False(t, a.IsLocked(lock.Add(time.Second)))

	acc := a.Account()
	assert.Equal(t, a.ID.Hex(), acc.ID)
	assert.True(t, acc.Active)
	assert.Equal(t, 5, acc.Lock.Attempts)

	assert.Equal(t, rbac.Subject{ID: a.ID.Hex(), Role: rbac.RoleSuperAdmin}, a.Subject())

	a.Role = "owner"
	assert.True(t, validator.ExtractValidationErrors(a.Validate()).Has("role"))
}

func TestBootstrap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	hasher := auth.NewHasher(bcrypt.MinCost)

	t.Run("disabled without credentials", func(t *testing.T) {
		t.Parallel()
		store := newMemAdmins()
		created, err := admin.Bootstrap(ctx, store, hasher, admin.BootstrapConfig{Username: "admin"}, discard)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, store.admins)
	})

	t.Run("creates super admin once", func(t *testing.T) {
		t.Parallel()
		store := newMemAdmins()
		cfg := admin.BootstrapConfig{Username: "admin", Password: "Str0ngPass", Email: "Admin@Webix.com"}

		created, err := admin.Bootstrap(ctx, store, hasher, cfg, discard)
		require.NoError(t, err)
		assert.True(t, created)

		a, err := store.FindByUsername(ctx, "admin")
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, rbac.RoleSuperAdmin, a.Role)
		assert.Equal(t, "admin@webix.com", a.Email)
		assert.True(t, a.IsActive)
		assert.NoError(t, hasher.Compare(a.PasswordHash, "Str0ngPass"))

		created, err = admin.Bootstrap(ctx, store, hasher, cfg, discard)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Len(t, store.admins, 1)
	})
}
