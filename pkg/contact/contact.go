package contact

import (
	"errors"
	"strings"

	"github.com/bpmonitor/idvault/pkg/validator"
)

// DefaultCountryCode is applied to national-format numbers with a leading zero.
const DefaultCountryCode = "66"

// Kind tells email and phone contacts apart.
type Kind string

const (
	KindEmail Kind = "email"
	KindPhone Kind = "phone"
)

// Contact is a normalized email address or E.164 phone number.
type Contact struct {
	Kind  Kind
	Value string
}

func (c Contact) String() string { return c.Value }

func (c Contact) IsZero() bool { return c.Value == "" }

// Method is the delivery channel name reported to clients: "email" or "sms".
func (c Contact) Method() string {
	if c.Kind == KindPhone {
		return "sms"
	}
	return "email"
}

type options struct {
	countryCode string
}

// Option configures Parse.
type Option func(*options)

// WithDefaultCountryCode sets the calling code used for numbers written in national format.
// An empty code makes such numbers invalid.
func WithDefaultCountryCode(code string) Option {
	return func(o *options) {
		o.countryCode = strings.TrimPrefix(strings.TrimSpace(code), "+")
	}
}

// Parse normalizes raw into a Contact. Anything containing "@" is treated as an email.
func Parse(raw string, opts ...Option) (Contact, error) {
	o := options{countryCode: DefaultCountryCode}
	for _, opt := range opts {
		opt(&o)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Contact{}, ErrInvalidContact
	}

	if strings.Contains(raw, "@") {
		email := NormalizeEmail(raw)
		if err := validator.Apply(validator.ValidEmail("contact", email)); err != nil {
			return Contact{}, errors.Join(ErrInvalidContact, err)
		}
		return Contact{Kind: KindEmail, Value: email}, nil
	}

	phone := normalizePhone(raw, o.countryCode)
	if err := validator.Apply(validator.ValidE164("contact", phone)); err != nil {
		return Contact{}, errors.Join(ErrInvalidContact, err)
	}
	return Contact{Kind: KindPhone, Value: phone}, nil
}

// MustParse is Parse for constants in tests and wiring code.
func MustParse(raw string, opts ...Option) Contact {
	c, err := Parse(raw, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// NormalizeEmail trims and lower-cases an email address. Dots in the local part
// are preserved: some providers treat them as significant.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone converts a phone number to E.164 using DefaultCountryCode.
// Input that cannot be converted is returned with formatting stripped so that
// the caller's validation rejects it.
func NormalizePhone(phone string) string {
	return normalizePhone(phone, DefaultCountryCode)
}

// NormalizePhoneWith is NormalizePhone with an explicit calling code, given
// with or without "+". It matches Parse with WithDefaultCountryCode(countryCode).
func NormalizePhoneWith(phone, countryCode string) string {
	return normalizePhone(phone, strings.TrimPrefix(strings.TrimSpace(countryCode), "+"))
}

var phoneFormatting = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "")

func normalizePhone(phone, countryCode string) string {
	p := phoneFormatting.Replace(strings.TrimSpace(phone))
	switch {
	case strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "00"):
		return "+" + p[2:]
	case strings.HasPrefix(p, "0") && countryCode != "":
		return "+" + countryCode + p[1:]
	}
	return p
}

// Mask keeps the first and last three characters and stars the rest.
// Values of six characters or fewer are masked completely.
func Mask(value string) string {
	r := []rune(value)
	if len(r) <= 6 {
		return strings.Repeat("*", len(r))
	}
	return string(r[:3]) + strings.Repeat("*", len(r)-6) + string(r[len(r)-3:])
}
