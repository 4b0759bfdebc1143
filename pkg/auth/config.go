package auth

import "github.com/bpmonitor/idvault/pkg/validator"

// Config holds password settings.
type Config struct {
	BcryptCost        int `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	PasswordMinLength int `env:"AUTH_PASSWORD_MIN_LENGTH" envDefault:"8"`
}

// Options converts cfg into service options. Zero values keep the defaults.
func (cfg Config) Options() []Option {
	var opts []Option
	if cfg.BcryptCost > 0 {
		opts = append(opts, WithBcryptCost(cfg.BcryptCost))
	}
	if cfg.PasswordMinLength > 0 {
		strength := validator.DefaultPasswordStrength
		strength.MinLength = cfg.PasswordMinLength
		opts = append(opts, WithPasswordStrength(strength))
	}
	return opts
}
