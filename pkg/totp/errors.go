package totp

import "errors"

var (
	ErrMissingKey    = errors.New("missing generator key")
	ErrInvalidDigits = errors.New("invalid digit count, must be between 4 and 10")
	ErrInvalidPeriod = errors.New("invalid period, must be at least one second")
)
