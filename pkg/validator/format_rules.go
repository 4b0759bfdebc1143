package validator

import (
	"net/mail"
	"regexp"
	"strings"
)

var (
	// E.164: leading plus, country code without zero, at most 15 digits overall.
	e164Regex = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)
	otpRegex  = regexp.MustCompile(`^\d+$`)
)

// ValidEmail accepts a bare RFC 5322 address with a dotted domain.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			value = strings.TrimSpace(value)
			if value == "" {
				return false
			}
			addr, err := mail.ParseAddress(value)
			if err != nil || addr.Address != value {
				return false
			}
			at := strings.LastIndex(value, "@")
			if at <= 0 {
				return false
			}
			domain := value[at+1:]
			return strings.Contains(domain, ".") &&
				!strings.HasPrefix(domain, ".") &&
				!strings.HasSuffix(domain, ".")
		},
		Error: newError(field, "email", "must be a valid email address"),
	}
}

// ValidE164 expects an already normalized phone number such as +66812345678.
func ValidE164(field, value string) Rule {
	return Rule{
		Check: func() bool { return e164Regex.MatchString(value) },
		Error: newError(field, "phone", "must be a valid phone number in international format"),
	}
}

// ValidOTP checks for exactly length ASCII digits.
func ValidOTP(field, value string, length int) Rule {
	return Rule{
		Check: func() bool {
			return length > 0 && len(value) == length && otpRegex.MatchString(value)
		},
		Error: newError(field, "otp_code", "must be a %d-digit code", length),
	}
}
