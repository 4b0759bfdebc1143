package otp

import "errors"

var (
	ErrInvalidConfig     = errors.New("otp: invalid configuration")
	ErrInvalidContact    = errors.New("otp: invalid contact")
	ErrChallengeNotFound = errors.New("otp: no active code for contact")
	ErrChallengeExpired  = errors.New("otp: code expired")
	ErrCodeMismatch      = errors.New("otp: code does not match")
)

// IsChallengeMissing reports whether err means there is no usable challenge.
// Callers that make security decisions should not distinguish the two cases.
func IsChallengeMissing(err error) bool {
	return errors.Is(err, ErrChallengeNotFound) || errors.Is(err, ErrChallengeExpired)
}
