package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webix/udirdlaga/pkg/auth"
)

func TestLockout(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	policy := auth.DefaultLockout()

	t.Run("locks on fifth failure", func(t *testing.T) {
		t.Parallel()
		var state auth.LockState
		for i := 1; i < 5; i++ {
			state = policy.Fail(state, now)
			assert.Equal(t, i, state.Attempts)
			assert.False(t, state.Locked(now))
		}
		state = policy.Fail(state, now)
		assert.Equal(t, 5, state.Attempts)
		require.True(t, state.Locked(now))
		assert.Equal(t, now.Add(2*time.Hour), *state.LockUntil)
	})

	t.Run("failures while locked keep the lock", func(t *testing.T) {
		t.Parallel()
		until := now.Add(time.Hour)
		state := policy.Fail(auth.LockState{Attempts: 5, LockUntil: &until}, now)
		assert.Equal(t, 6, state.Attempts)
		assert.Equal(t, until, *state.LockUntil)
	})

	t.Run("expired lock restarts the count", func(t *testing.T) {
		t.Parallel()
		until := now.Add(-time.Minute)
		state := policy.Fail(auth.LockState{Attempts: 7, LockUntil: &until}, now)
		assert.Equal(t, auth.LockState{Attempts: 1}, state)
	})

	t.Run("lock boundary", func(t *testing.T) {
		t.Parallel()
		until := now
		assert.False(t, auth.LockState{LockUntil: &until}.Locked(now))
		assert.True(t, auth.LockState{LockUntil: &until}.Locked(now.Add(-time.Nanosecond)))
		assert.False(t, auth.LockState{}.Locked(now))
	})

	t.Run("zero policy never locks", func(t *testing.T) {
		t.Parallel()
		state := auth.Lockout{}.Fail(auth.LockState{Attempts: 100}, now)
		assert.Nil(t, state.LockUntil)
	})
}
