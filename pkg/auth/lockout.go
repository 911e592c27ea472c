package auth

import "time"

// LockState is the persisted failed-login bookkeeping of an account.
type LockState struct {
	Attempts  int
	LockUntil *time.Time
}

// Locked reports whether the account is locked at now.
func (s LockState) Locked(now time.Time) bool {
	return s.LockUntil != nil && s.LockUntil.After(now)
}

// Lockout locks an account for Duration once MaxAttempts consecutive
// logins have failed.
type Lockout struct {
	MaxAttempts int
	Duration    time.Duration
}

// DefaultLockout locks for two hours after five failures.
func DefaultLockout() Lockout {
	return Lockout{MaxAttempts: 5, Duration: 2 * time.Hour}
}

// Fail returns the state after one more failed attempt at now. An
// expired lock restarts the count at one.
func (l Lockout) Fail(s LockState, now time.Time) LockState {
	if s.LockUntil != nil && !s.LockUntil.After(now) {
		return LockState{Attempts: 1}
	}

	next := LockState{Attempts: s.Attempts + 1, LockUntil: s.LockUntil}
	if l.MaxAttempts > 0 && next.Attempts >= l.MaxAttempts && !s.Locked(now) {
		until := now.Add(l.Duration)
		next.LockUntil = &until
	}
	return next
}
