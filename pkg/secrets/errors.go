package secrets

import "errors"

var (
	ErrInvalidKey          = errors.New("invalid key: must be 32 bytes")
	ErrKeyNotSet           = errors.New("master key not set")
	ErrKeyDerivationFailed = errors.New("key derivation failed")
	ErrUnknownPurpose      = errors.New("unknown key purpose")
)
