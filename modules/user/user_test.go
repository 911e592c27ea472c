package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/validator"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockStore) FindByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockStore) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockStore) SaveLockState(ctx context.Context, id string, state auth.LockState) error {
	return m.Called(ctx, id, state).Error(0)
}

func (m *MockStore) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func validUser() *user.User {
	return &user.User{
		Username:  "jane.doe",
		Email:     "jane@acme.mn",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      "user",
		Status:    user.StatusActive,
	}
}

func TestUser_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, validUser().Validate())
	})

	t.Run("reports each bad field", func(t *testing.T) {
		t.Parallel()
		u := validUser()
		u.Username = "j d"
		u.Email = "jane"
		u.Role = "root"
		u.Phone = "call me"
		u.Permissions = []string{"read", "fly"}

		errs := validator.ExtractValidationErrors(u.Validate())
		for _, field := range []string{"username", "email", "role", "phone", "permissions"} {
			assert.True(t, errs.Has(field), field)
		}
		assert.False(t, errs.Has("firstName"))
	})
}

func TestUser_Normalize(t *testing.T) {
	t.Parallel()
	u := &user.User{Username: " jane ", Email: " Jane@ACME.mn ", FirstName: " Jane", LastName: "Doe "}
	u.Normalize()
	assert.Equal(t, "jane", u.Username)
	assert.Equal(t, "jane@acme.mn", u.Email)
	assert.Equal(t, "Jane Doe", u.FullName())
}

func TestUser_Account(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(time.Hour)
	u := validUser()
	u.ID = bson.NewObjectID()
	u.PasswordHash = "hash"
	u.LoginAttempts = 5
	u.LockUntil = &until

	acc := u.Account()
	assert.Equal(t, u.ID.Hex(), acc.ID)
	assert.Equal(t, "hash", acc.PasswordHash)
	assert.True(t, acc.Active)
	assert.True(t, u.IsLocked(now))
	assert.False(t, u.IsLocked(until.Add(time.Second)))

	u.Status = user.StatusSuspended
	assert.False(t, u.Account().Active)
}

func TestAccounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		t.Parallel()
		store := &MockStore{}
		store.On("FindByUsername", ctx, "ghost").Return(nil, nil)

		acc, err := user.Accounts(store).FindAccount(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, acc)
		store.AssertExpectations(t)
	})

	t.Run("login through authenticator", func(t *testing.T) {
		t.Parallel()
		hasher := auth.NewHasher(4)
		hash, err := hasher.Hash("Secret1")
		require.NoError(t, err)

		u := validUser()
		u.ID = bson.NewObjectID()
		u.PasswordHash = hash

		store := &MockStore{}
		store.On("FindByUsername", ctx, "jane.doe").Return(u, nil)
		store.On("RecordLogin", ctx, u.ID.Hex(), mock.AnythingOfType("time.Time")).Return(nil)

		acc, err := auth.NewAuthenticator(auth.WithHasher(hasher)).
			Authenticate(ctx, user.Accounts(store), "jane.doe", "Secret1")
		require.NoError(t, err)
		assert.Equal(t, u.ID.Hex(), acc.ID)
		store.AssertExpectations(t)
	})
}
