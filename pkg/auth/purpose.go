package auth

import "strings"

// Purpose says why a code was requested. It selects message templates and is
// recorded in logs; challenges themselves are keyed by contact only.
type Purpose string

const (
	PurposeRegistration      Purpose = "registration"
	PurposeLogin             Purpose = "login"
	PurposePasswordReset     Purpose = "password_reset"
	PurposePhoneVerification Purpose = "phone_verification"
	PurposeEmailVerification Purpose = "email_verification"
)

func (p Purpose) String() string { return string(p) }

func (p Purpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposeLogin, PurposePasswordReset,
		PurposePhoneVerification, PurposeEmailVerification:
		return true
	}
	return false
}

// ParsePurpose accepts a purpose name in any case. Empty means registration.
func ParsePurpose(s string) (Purpose, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PurposeRegistration, nil
	}
	p := Purpose(s)
	if !p.Valid() {
		return "", ErrInvalidPurpose
	}
	return p, nil
}
