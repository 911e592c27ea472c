package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/webix/udirdlaga/pkg/logger"
)

// Account is the credential view of a tenant user or platform admin.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Active       bool
	Lock         LockState
}

// AccountStore is the persistence an Authenticator needs.
type AccountStore interface {
	// FindAccount returns nil, nil when no account has username.
	FindAccount(ctx context.Context, username string) (*Account, error)
	SaveLockState(ctx context.Context, id string, state LockState) error
	RecordLogin(ctx context.Context, id string, at time.Time) error
}

// Authenticator verifies username/password logins and maintains the
// lockout counters of the account.
type Authenticator struct {
	hasher  *Hasher
	lockout Lockout
	now     func() time.Time
	logger  *slog.Logger

	dummyOnce sync.Once
	dummyHash string
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithHasher sets the password hasher.
func WithHasher(h *Hasher) Option {
	return func(a *Authenticator) {
		if h != nil {
			a.hasher = h
		}
	}
}

// WithLockout sets the lockout policy.
func WithLockout(l Lockout) Option {
	return func(a *Authenticator) { a.lockout = l }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAuthenticator returns an Authenticator with bcrypt cost DefaultCost
// and DefaultLockout.
func NewAuthenticator(opts ...Option) *Authenticator {
	a := &Authenticator{
		hasher:  NewHasher(DefaultCost),
		lockout: DefaultLockout(),
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Hasher returns the hasher used for verification.
func (a *Authenticator) Hasher() *Hasher { return a.hasher }

// Authenticate checks password for username. It returns
// ErrInvalidCredentials for unknown users and wrong passwords,
// ErrAccountLocked while a lock is in force and ErrAccountInactive for
// disabled accounts. A wrong password counts towards the lockout; a
// successful login clears it.
func (a *Authenticator) Authenticate(ctx context.Context, store AccountStore, username, password string) (*Account, error) {
	account, err := store.FindAccount(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		// Keep the response time of unknown users close to known ones.
		_ = a.hasher.Compare(a.dummy(), password)
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	if account.Lock.Locked(now) {
		return nil, ErrAccountLocked
	}
	if !account.Active {
		return nil, ErrAccountInactive
	}

	if err := a.hasher.Compare(account.PasswordHash, password); err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			return nil, err
		}
		state := a.lockout.Fail(account.Lock, now)
		if serr := store.SaveLockState(ctx, account.ID, state); serr != nil {
			a.logger.ErrorContext(ctx, "failed to record failed login",
				logger.UserID(account.ID),
				logger.Error(serr),
				logger.Component("auth"),
			)
		}
		if state.Locked(now) {
			a.logger.WarnContext(ctx, "account locked",
				logger.UserID(account.ID),
				slog.Int("attempts", state.Attempts),
				logger.Component("auth"),
			)
		}
		return nil, ErrInvalidCredentials
	}

	if account.Lock.Attempts > 0 || account.Lock.LockUntil != nil {
		if err := store.SaveLockState(ctx, account.ID, LockState{}); err != nil {
			return nil, fmt.Errorf("failed to reset login attempts: %w", err)
		}
		account.Lock = LockState{}
	}
	if err := store.RecordLogin(ctx, account.ID, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	return account, nil
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.hasher.Hash("webix-dummy-password")
	})
	return a.dummyHash
}
