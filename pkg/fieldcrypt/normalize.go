package fieldcrypt

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/bpmonitor/idvault/pkg/contact"
)

// Normalizer maps equivalent inputs to one canonical string before hashing.
type Normalizer func(string) string

// NormalizeText trims, applies Unicode NFC and collapses runs of whitespace.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// NormalizeEmail trims and case folds an address.
func NormalizeEmail(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// NormalizePhone converts a phone number to E.164 with contact.DefaultCountryCode.
func NormalizePhone(s string) string {
	return contact.NormalizePhone(s)
}

// PhoneNormalizer converts phone numbers to E.164, completing national-format
// numbers with countryCode.
func PhoneNormalizer(countryCode string) Normalizer {
	return func(s string) string {
		return contact.NormalizePhoneWith(s, countryCode)
	}
}

var identifierSeparators = strings.NewReplacer(" ", "", "-", "", "\t", "")

// NormalizeIdentifier strips separators and upper-cases, for ids and license numbers.
func NormalizeIdentifier(s string) string {
	return strings.ToUpper(identifierSeparators.Replace(strings.TrimSpace(s)))
}

// DateLayout is the canonical form of date fields.
const DateLayout = time.DateOnly

// NormalizeDate canonicalizes an ISO date or RFC 3339 timestamp to YYYY-MM-DD.
// Unparseable input is only trimmed.
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}
