package validator

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// PasswordStrength configures StrongPassword.
type PasswordStrength struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // of: upper, lower, digit, other
}

// DefaultPasswordStrength matches the registration form: 8..128 runes, two classes.
var DefaultPasswordStrength = PasswordStrength{MinLength: 8, MaxLength: 128, MinCharClasses: 2}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "11111111": {}, "iloveyou": {},
	"admin123": {}, "welcome1": {}, "abc12345": {}, "letmein1": {}, "00000000": {},
}

func StrongPassword(field, value string, cfg PasswordStrength) Rule {
	return Rule{
		Check: func() bool {
			n := utf8.RuneCountInString(value)
			if n < cfg.MinLength || (cfg.MaxLength > 0 && n > cfg.MaxLength) {
				return false
			}
			var upper, lower, digit, other bool
			for _, r := range value {
				switch {
				case unicode.IsUpper(r):
					upper = true
				case unicode.IsLower(r):
					lower = true
				case unicode.IsDigit(r):
					digit = true
				default:
					other = true
				}
			}
			classes := 0
			for _, ok := range []bool{upper, lower, digit, other} {
				if ok {
					classes++
				}
			}
			return classes >= cfg.MinCharClasses
		},
		Error: newError(field, "password_strength",
			"must be %d-%d characters and mix at least %d character classes",
			cfg.MinLength, cfg.MaxLength, cfg.MinCharClasses),
	}
}

func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			_, common := commonPasswords[strings.ToLower(value)]
			return !common
		},
		Error: newError(field, "password_common", "is too common"),
	}
}
