package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/bpmonitor/idvault/pkg/identity"
	"github.com/bpmonitor/idvault/pkg/lockout"
	"github.com/bpmonitor/idvault/pkg/otp"
)

// Re-exported so callers can match on auth errors alone.
var (
	ErrInvalidContact = otp.ErrInvalidContact
	ErrAccountLocked  = lockout.ErrAccountLocked
	ErrUserNotFound   = identity.ErrUserNotFound
)

var (
	ErrInvalidPurpose     = errors.New("invalid verification purpose")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrContactNotVerified = errors.New("contact not verified")
	ErrDispatchFailed     = errors.New("failed to send verification code")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrTooManyRequests    = errors.New("too many verification requests")
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is deactivated")
)

// RateLimitError is returned when code requests for a contact are throttled.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry in %s", ErrTooManyRequests, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrTooManyRequests
}
