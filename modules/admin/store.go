package admin

import (
	"context"
	"time"

	"github.com/webix/udirdlaga/pkg/auth"
)

// Store is the data access of platform admins. Lookups return nil, nil
// when no admin matches.
type Store interface {
	FindByUsername(ctx context.Context, username string) (*Admin, error)
	FindByID(ctx context.Context, id string) (*Admin, error)
	// Create returns ErrAdminExists on a duplicate username or email.
	Create(ctx context.Context, a *Admin) error
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
	adm, err := a.store.FindByUsername(ctx, username)
	if err != nil || adm == nil {
		return nil, err
	}
	return adm.Account(), nil
}

func (a accounts) SaveLockState(ctx context.Context, id string, state auth.LockState) error {
	return a.store.SaveLockState(ctx, id, state)
}

func (a accounts) RecordLogin(ctx context.Context, id string, at time.Time) error {
	return a.store.RecordLogin(ctx, id, at)
}
