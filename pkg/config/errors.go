package config

import "errors"

var (
	ErrParsingConfig   = errors.New("failed to parse environment variables into config")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrNilPointer      = errors.New("config: nil pointer")
	ErrEnvFileNotFound = errors.New("config: env file not found")
)
