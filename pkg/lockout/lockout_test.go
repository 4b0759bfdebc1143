package lockout_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpmonitor/idvault/pkg/lockout"
)

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	p := lockout.New(lockout.Config{})
	assert.Equal(t, uint8(5), p.MaxAttempts())
	assert.Equal(t, 30*time.Minute, p.Duration())

	p = lockout.New(lockout.Config{MaxAttempts: 3, Duration: time.Minute})
	assert.Equal(t, uint8(3), p.MaxAttempts())
	assert.Equal(t, time.Minute, p.Duration())
}

func TestPolicy_LocksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	p := lockout.New(lockout.Config{}, lockout.WithClock(func() time.Time { return now }))

	var s lockout.State
	for i := 1; i < 5; i++ {
		var locked bool
		s, locked = p.RecordFailure(s)
		require.False(t, locked, "attempt %d", i)
		assert.Equal(t, uint8(i), s.FailedAttempts)
		assert.NoError(t, p.Check(s))
	}

	s, locked := p.RecordFailure(s)
	require.True(t, locked)
	assert.Equal(t, lockout.StatusLocked, p.Status(s))
	assert.ErrorIs(t, p.Check(s), lockout.ErrAccountLocked)
	assert.Zero(t, s.FailedAttempts)
	assert.Equal(t, now.Add(30*time.Minute), s.LockedUntil)
	assert.Equal(t, 30*time.Minute, p.RemainingLock(s))

	// Failures while locked do not extend the lock.
	again, locked := p.RecordFailure(s)
	assert.True(t, locked)
	assert.Equal(t, s, again)
}

func TestPolicy_LockExpiresLazily(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	p := lockout.New(lockout.Config{MaxAttempts: 2}, lockout.WithClock(clock))

	s, _ := p.RecordFailure(lockout.State{})
	s, locked := p.RecordFailure(s)
	require.True(t, locked)

	now = now.Add(29 * time.Minute)
	assert.Equal(t, lockout.StatusLocked, p.Status(s))

	now = now.Add(time.Minute)
	assert.Equal(t, lockout.StatusActive, p.Status(s))
	assert.NoError(t, p.Check(s))
	assert.Zero(t, p.RemainingLock(s))

	// The counter starts over after the lock lapses.
	s, locked = p.RecordFailure(s)
	assert.False(t, locked)
	assert.Equal(t, uint8(1), s.FailedAttempts)
	assert.True(t, s.LockedUntil.IsZero())
}

func TestPolicy_SuccessAndUnlockReset(t *testing.T) {
	t.Parallel()

	p := lockout.New(lockout.Config{})
	locked := lockout.State{LockedUntil: time.Now().Add(time.Hour)}

	assert.Equal(t, lockout.State{}, p.Unlock(locked))
	assert.Equal(t, lockout.State{}, p.RecordSuccess(lockout.State{FailedAttempts: 3}))
	assert.Equal(t, lockout.StatusActive, p.Status(lockout.State{}))
}
