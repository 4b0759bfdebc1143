package contact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpmonitor/idvault/pkg/contact"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want contact.Contact
	}{
		{"email is lower-cased and trimmed", "  Bob@X.com ", contact.Contact{Kind: contact.KindEmail, Value: "bob@x.com"}},
		{"email keeps plus tag", "User+bp@Example.co.th", contact.Contact{Kind: contact.KindEmail, Value: "user+bp@example.co.th"}},
		{"e164 passes through", "+66812345678", contact.Contact{Kind: contact.KindPhone, Value: "+66812345678"}},
		{"national format gets country code", "081-234-5678", contact.Contact{Kind: contact.KindPhone, Value: "+66812345678"}},
		{"formatting is stripped", "+66 (81) 234.5678", contact.Contact{Kind: contact.KindPhone, Value: "+66812345678"}},
		{"international prefix", "0066812345678", contact.Contact{Kind: contact.KindPhone, Value: "+66812345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := contact.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "not-an-email@", "@x.com", "12345", "abc", "+0812345678"} {
		_, err := contact.Parse(raw)
		assert.ErrorIs(t, err, contact.ErrInvalidContact, raw)
	}
}

func TestParse_CountryCode(t *testing.T) {
	t.Parallel()

	c, err := contact.Parse("0412345678", contact.WithDefaultCountryCode("+61"))
	require.NoError(t, err)
	assert.Equal(t, "+61412345678", c.Value)

	_, err = contact.Parse("0412345678", contact.WithDefaultCountryCode(""))
	assert.ErrorIs(t, err, contact.ErrInvalidContact)
}

func TestContact_Method(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "email", contact.MustParse("a@b.co").Method())
	assert.Equal(t, "sms", contact.MustParse("+66812345678").Method())
	assert.True(t, contact.Contact{}.IsZero())
}

func TestMask(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "use****com", contact.Mask("user@x.com"))
	assert.Equal(t, "+66******678", contact.Mask("+66812345678"))
	assert.Equal(t, "******", contact.Mask("abcdef"))
	assert.Equal(t, "", contact.Mask(""))
}

func TestNormalizeHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bob@x.com", contact.NormalizeEmail(" BOB@X.COM"))
	assert.Equal(t, "+66812345678", contact.NormalizePhone("081 234 5678"))
	assert.Equal(t, "+1812345678", contact.NormalizePhoneWith("081 234 5678", "+1"))

	parsed := contact.MustParse("0412345678", contact.WithDefaultCountryCode("61"))
	assert.Equal(t, parsed.Value, contact.NormalizePhoneWith("0412 345 678", "61"))
}
