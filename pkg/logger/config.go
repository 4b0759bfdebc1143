package logger

import (
	"fmt"
	"log/slog"
)

// Config drives New from the environment.
type Config struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"APP_NAME" envDefault:"idvault"`
	Level   string `env:"LOG_LEVEL"`
	Format  string `env:"LOG_FORMAT"`
}

// Options converts cfg into logger options. Level and Format override the
// environment defaults when set.
func (cfg Config) Options() ([]Option, error) {
	opts := []Option{WithEnvironment(cfg.Env, cfg.Service)}

	if cfg.Level != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("logger: invalid LOG_LEVEL %q: %w", cfg.Level, err)
		}
		opts = append(opts, WithLevel(lvl))
	}

	switch Format(cfg.Format) {
	case "":
	case FormatJSON, FormatText:
		opts = append(opts, WithFormat(Format(cfg.Format)))
	default:
		return nil, fmt.Errorf("logger: invalid LOG_FORMAT %q", cfg.Format)
	}

	return opts, nil
}
