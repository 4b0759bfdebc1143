// Package config loads typed configuration from the environment.
//
// Structs declare their variables with github.com/caarlos0/env tags. The
// first Load reads a .env file from the working directory if one exists
// (real environment variables win), then each struct type is parsed once and
// cached for the life of the process:
//
//	type Config struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// A type with a Validate() error method is validated after parsing; a failing
// Validate is returned wrapped in ErrInvalidConfig and nothing is cached.
package config
