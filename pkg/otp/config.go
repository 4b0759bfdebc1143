package otp

import (
	"errors"
	"time"

	"github.com/bpmonitor/idvault/pkg/totp"
)

// Config holds challenge settings.
type Config struct {
	// TTL is both the validity of an issued code and the generator period.
	TTL    time.Duration `env:"OTP_TTL" envDefault:"5m"`
	Digits int           `env:"OTP_DIGITS" envDefault:"6"`
	// Skew is the number of neighbouring periods accepted on each side. It is
	// at least 1 so that a code issued late in a period lives for the full TTL.
	Skew         int           `env:"OTP_SKEW" envDefault:"1"`
	VerifiedTTL  time.Duration `env:"OTP_VERIFIED_TTL" envDefault:"10m"`
	ReapInterval time.Duration `env:"OTP_REAP_INTERVAL" envDefault:"2m"`
	// CountryCode is applied to national-format phone numbers.
	CountryCode string `env:"OTP_DEFAULT_COUNTRY_CODE" envDefault:"66"`
}

// DefaultConfig mirrors the envDefault tags for callers that do not load from the environment.
func DefaultConfig() Config {
	return Config{
		TTL:          5 * time.Minute,
		Digits:       6,
		Skew:         1,
		VerifiedTTL:  10 * time.Minute,
		ReapInterval: 2 * time.Minute,
		CountryCode:  "66",
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TTL == 0 {
		c.TTL = d.TTL
	}
	if c.Digits == 0 {
		c.Digits = d.Digits
	}
	if c.Skew == 0 {
		c.Skew = d.Skew
	}
	if c.VerifiedTTL == 0 {
		c.VerifiedTTL = d.VerifiedTTL
	}
	if c.ReapInterval == 0 {
		c.ReapInterval = d.ReapInterval
	}
	if c.CountryCode == "" {
		c.CountryCode = d.CountryCode
	}
	return c
}

func (c Config) validate() error {
	if c.TTL < time.Second || c.TTL%time.Second != 0 {
		return errors.Join(ErrInvalidConfig, errors.New("ttl must be a whole number of seconds"))
	}
	if err := (totp.Params{Digits: c.Digits, Period: c.TTL}).Validate(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	if c.Skew < 1 {
		return errors.Join(ErrInvalidConfig, errors.New("skew must be at least 1"))
	}
	if c.VerifiedTTL < 0 || c.ReapInterval < 0 {
		return errors.Join(ErrInvalidConfig, errors.New("durations must not be negative"))
	}
	return nil
}
