package validator

import (
	"regexp"
	"strings"
)

var licenseRegex = regexp.MustCompile(`^[A-Za-z0-9.\-/]{4,32}$`)

// ValidCitizenID checks a 13-digit Thai national ID including its mod-11 check digit.
// Spaces and dashes are ignored.
func ValidCitizenID(field, value string) Rule {
	return Rule{
		Check: func() bool {
			digits := strings.NewReplacer(" ", "", "-", "").Replace(value)
			if len(digits) != 13 {
				return false
			}
			sum := 0
			for i := 0; i < 13; i++ {
				c := digits[i]
				if c < '0' || c > '9' {
					return false
				}
				if i < 12 {
					sum += int(c-'0') * (13 - i)
				}
			}
			check := (11 - sum%11) % 10
			return int(digits[12]-'0') == check
		},
		Error: newError(field, "citizen_id", "must be a valid 13-digit citizen ID"),
	}
}

// ValidMedicalLicense only constrains the alphabet and length; issuers vary in format.
func ValidMedicalLicense(field, value string) Rule {
	return Rule{
		Check: func() bool { return licenseRegex.MatchString(strings.TrimSpace(value)) },
		Error: newError(field, "medical_license", "must be a valid medical license number"),
	}
}
