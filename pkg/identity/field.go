package identity

import (
	"github.com/bpmonitor/idvault/pkg/contact"
	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
)

// Field names a sealed attribute of User.
type Field string

const (
	FieldEmail          Field = "email"
	FieldPhone          Field = "phone"
	FieldFullName       Field = "full_name"
	FieldCitizenID      Field = "citizen_id"
	FieldMedicalLicense Field = "medical_license"
	FieldDateOfBirth    Field = "date_of_birth"
)

// Fields lists every sealed attribute in storage order.
var Fields = []Field{
	FieldEmail,
	FieldPhone,
	FieldFullName,
	FieldCitizenID,
	FieldMedicalLicense,
	FieldDateOfBirth,
}

// Schema holds the hashing spec of every field. Sealing and lookups through
// one Directory share a Schema so both sides normalize identically.
type Schema struct {
	specs map[Field]fieldcrypt.Spec
}

// NewSchema builds the field specs. countryCode completes national-format
// phone numbers and must match the one contacts are parsed with.
func NewSchema(countryCode string) *Schema {
	if countryCode == "" {
		countryCode = contact.DefaultCountryCode
	}
	return &Schema{specs: map[Field]fieldcrypt.Spec{
		FieldEmail:          {Domain: "identity.email", Normalize: fieldcrypt.NormalizeEmail},
		FieldPhone:          {Domain: "identity.phone", Normalize: fieldcrypt.PhoneNormalizer(countryCode)},
		FieldFullName:       {Domain: "identity.full_name", Normalize: fieldcrypt.NormalizeText},
		FieldCitizenID:      {Domain: "identity.citizen_id", Normalize: fieldcrypt.NormalizeIdentifier},
		FieldMedicalLicense: {Domain: "identity.medical_license", Normalize: fieldcrypt.NormalizeIdentifier},
		FieldDateOfBirth:    {Domain: "identity.date_of_birth", Normalize: fieldcrypt.NormalizeDate},
	}}
}

// Spec returns the hashing spec for f. It is the same at write and query time.
func (s *Schema) Spec(f Field) fieldcrypt.Spec {
	if s == nil {
		s = defaultSchema
	}
	return s.specs[f]
}

var defaultSchema = NewSchema(contact.DefaultCountryCode)

// Spec returns the hashing spec for f under contact.DefaultCountryCode.
func (f Field) Spec() fieldcrypt.Spec { return defaultSchema.Spec(f) }

func (f Field) String() string { return string(f) }

func (f Field) Valid() bool {
	_, ok := defaultSchema.specs[f]
	return ok
}

// Unique reports whether at most one user may hold a given value.
// Phone numbers may be shared, for example by a caretaker and a patient.
func (f Field) Unique() bool {
	switch f {
	case FieldEmail, FieldCitizenID, FieldMedicalLicense:
		return true
	}
	return false
}

// Searchable reports whether lookups by f are supported.
func (f Field) Searchable() bool {
	return f.Valid() && f != FieldDateOfBirth
}
