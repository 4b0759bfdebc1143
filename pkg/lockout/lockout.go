package lockout

import (
	"time"
)

const (
	DefaultMaxAttempts = 5
	DefaultDuration    = 30 * time.Minute
)

// Config controls the policy.
type Config struct {
	MaxAttempts uint8         `env:"LOCKOUT_MAX_ATTEMPTS" envDefault:"5"`
	Duration    time.Duration `env:"LOCKOUT_DURATION" envDefault:"30m"`
}

// Status is the derived account state.
type Status string

const (
	StatusActive Status = "active"
	StatusLocked Status = "locked"
)

// State is the persisted lockout data of one account.
type State struct {
	FailedAttempts uint8
	LockedUntil    time.Time
}

// Policy evaluates State values. Safe for concurrent use.
type Policy struct {
	maxAttempts uint8
	duration    time.Duration
	now         func() time.Time
}

// Option configures a Policy.
type Option func(*Policy)

func WithClock(now func() time.Time) Option {
	return func(p *Policy) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a Policy. Zero config fields take the defaults.
func New(cfg Config, opts ...Option) *Policy {
	p := &Policy{
		maxAttempts: cfg.MaxAttempts,
		duration:    cfg.Duration,
		now:         time.Now,
	}
	if p.maxAttempts == 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	if p.duration <= 0 {
		p.duration = DefaultDuration
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) MaxAttempts() uint8 { return p.maxAttempts }

func (p *Policy) Duration() time.Duration { return p.duration }

// Status reports whether s is locked right now.
func (p *Policy) Status(s State) Status {
	if !s.LockedUntil.IsZero() && p.now().Before(s.LockedUntil) {
		return StatusLocked
	}
	return StatusActive
}

// Check returns ErrAccountLocked while s is locked.
func (p *Policy) Check(s State) error {
	if p.Status(s) == StatusLocked {
		return ErrAccountLocked
	}
	return nil
}

// RecordFailure counts one failed attempt. On reaching MaxAttempts the account
// is locked for Duration and the counter starts over; locked is true then.
func (p *Policy) RecordFailure(s State) (next State, locked bool) {
	if p.Status(s) == StatusLocked {
		return s, true
	}

	next = State{FailedAttempts: s.FailedAttempts + 1}
	if next.FailedAttempts >= p.maxAttempts {
		return State{LockedUntil: p.now().Add(p.duration)}, true
	}
	return next, false
}

// RecordSuccess clears failures and any expired lock.
func (p *Policy) RecordSuccess(State) State {
	return State{}
}

// Unlock clears the lock and the counter, used after a password reset.
func (p *Policy) Unlock(State) State {
	return State{}
}

// RemainingLock returns how long s stays locked, or zero.
func (p *Policy) RemainingLock(s State) time.Duration {
	if p.Status(s) != StatusLocked {
		return 0
	}
	return s.LockedUntil.Sub(p.now())
}
