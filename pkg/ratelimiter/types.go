package ratelimiter

import (
	"fmt"
	"time"
)

// Result is the outcome of one check.
type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	CheckedAt time.Time
}

func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is how long to wait before the next token, or 0 when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(r.ResetAt.Sub(r.CheckedAt), 0)
}

// Config defines one bucket.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

func (c Config) validate() error {
	switch {
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	case c.RefillRate <= 0:
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	case c.RefillInterval <= 0:
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Limits are the service-wide limits loaded from the environment. Contact
// limits code requests per email or phone; Client limits auth requests per
// client address.
type Limits struct {
	ContactBurst    int           `env:"RATELIMIT_CONTACT_BURST" envDefault:"3"`
	ContactInterval time.Duration `env:"RATELIMIT_CONTACT_INTERVAL" envDefault:"1m"`
	ClientBurst     int           `env:"RATELIMIT_CLIENT_BURST" envDefault:"30"`
	ClientInterval  time.Duration `env:"RATELIMIT_CLIENT_INTERVAL" envDefault:"2s"`
	TrustProxy      bool          `env:"RATELIMIT_TRUST_PROXY" envDefault:"false"`
}

// Contact is a bucket of ContactBurst tokens regaining one per ContactInterval.
func (l Limits) Contact() Config {
	return Config{Capacity: l.ContactBurst, RefillRate: 1, RefillInterval: l.ContactInterval}
}

// Client is a bucket of ClientBurst tokens regaining one per ClientInterval.
func (l Limits) Client() Config {
	return Config{Capacity: l.ClientBurst, RefillRate: 1, RefillInterval: l.ClientInterval}
}
