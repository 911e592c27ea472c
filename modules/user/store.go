package user

import (
	"context"
	"time"

	"github.com/webix/udirdlaga/pkg/auth"
)

// Store is the data access of tenant users. Lookups return nil, nil when
// no user matches.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User) error
	SaveLockState(ctx context.Context, id string, state auth.LockState) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// Accounts adapts a Store to auth.AccountStore.
func Accounts(s Store) auth.AccountStore {
	return accounts{store: s}
}

type accounts struct {
	store Store
}

func (a accounts) FindAccount(ctx context.Context, username string) (*auth.Account, error) {
	u, err := a.store.FindByUsername(ctx, username)
	if err != nil || u == nil {
		return nil, err
	}
	return u.Account(), nil
}

func (a accounts) SaveLockState(ctx context.Context, id string, state auth.LockState) error {
	return a.store.SaveLockState(ctx, id, state)
}

func (a accounts) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return a.store.RecordLogin(ctx, id, at)
}
