package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
	"github.com/bpmonitor/idvault/pkg/lockout"
)

// User is a patient or doctor account.
type User struct {
	cipher Cipher
	schema *Schema

	id   uuid.UUID
	role Role

	email          fieldcrypt.Sealed
	phone          fieldcrypt.Sealed
	fullName       fieldcrypt.Sealed
	citizenID      fieldcrypt.Sealed
	medicalLicense fieldcrypt.Sealed
	dateOfBirth    fieldcrypt.Sealed

	gender    string
	bloodType string
	heightCM  float64
	weightKG  float64

	passwordDigest []byte
	lockout        lockout.State

	active        bool
	emailVerified bool
	phoneVerified bool

	createdAt   time.Time
	updatedAt   time.Time
	lastLoginAt time.Time
}

// NewUser creates an active user with a fresh id bound to c.
func NewUser(c Cipher, role Role) (*User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	now := time.Now().UTC()
	return &User{
		cipher:    c,
		id:        uuid.New(),
		role:      role,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}, nil
}

func (u *User) bind(c Cipher, schema *Schema) *User {
	u.cipher = c
	u.schema = schema
	return u
}

func (u *User) clone() *User {
	c := *u
	return &c
}

func (u *User) sealed(f Field) *fieldcrypt.Sealed {
	switch f {
	case FieldEmail:
		return &u.email
	case FieldPhone:
		return &u.phone
	case FieldFullName:
		return &u.fullName
	case FieldCitizenID:
		return &u.citizenID
	case FieldMedicalLicense:
		return &u.medicalLicense
	case FieldDateOfBirth:
		return &u.dateOfBirth
	}
	return nil
}

func (u *User) get(f Field) (string, error) {
	s := u.sealed(f)
	if s == nil {
		return "", ErrInvalidField
	}
	if s.IsZero() {
		return "", nil
	}
	if u.cipher == nil {
		return "", ErrNoCipher
	}
	v, err := u.cipher.Open(*s)
	if err != nil {
		return "", &FieldError{UserID: u.id, Field: f, Err: err}
	}
	return v, nil
}

// set seals value into f. A blank value clears both ciphertext and hash.
func (u *User) set(f Field, value string) error {
	s := u.sealed(f)
	if s == nil {
		return ErrInvalidField
	}
	if strings.TrimSpace(value) == "" {
		*s = fieldcrypt.Sealed{}
		return nil
	}
	if u.cipher == nil {
		return ErrNoCipher
	}
	sealed, err := u.cipher.Seal(u.schema.Spec(f), value)
	if err != nil {
		return err
	}
	*s = sealed
	return nil
}

// LookupHash returns the stored hash of f, nil when the field is absent.
func (u *User) LookupHash(f Field) []byte {
	if s := u.sealed(f); s != nil {
		return s.LookupHash
	}
	return nil
}

// Has reports whether f holds a value.
func (u *User) Has(f Field) bool {
	s := u.sealed(f)
	return s != nil && !s.IsZero()
}

func (u *User) ID() uuid.UUID { return u.id }
func (u *User) Role() Role    { return u.role }

func (u *User) Email() (string, error)           { return u.get(FieldEmail) }
func (u *User) SetEmail(v string) error          { return u.set(FieldEmail, v) }
func (u *User) Phone() (string, error)           { return u.get(FieldPhone) }
func (u *User) SetPhone(v string) error          { return u.set(FieldPhone, v) }
func (u *User) FullName() (string, error)        { return u.get(FieldFullName) }
func (u *User) SetFullName(v string) error       { return u.set(FieldFullName, v) }
func (u *User) CitizenID() (string, error)       { return u.get(FieldCitizenID) }
func (u *User) SetCitizenID(v string) error      { return u.set(FieldCitizenID, v) }
func (u *User) MedicalLicense() (string, error)  { return u.get(FieldMedicalLicense) }
func (u *User) SetMedicalLicense(v string) error { return u.set(FieldMedicalLicense, v) }

// DateOfBirth returns the zero time when no date is stored.
func (u *User) DateOfBirth() (time.Time, error) {
	v, err := u.get(FieldDateOfBirth)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	t, err := time.Parse(fieldcrypt.DateLayout, v)
	if err != nil {
		return time.Time{}, &FieldError{UserID: u.id, Field: FieldDateOfBirth, Err: errors.Join(fieldcrypt.ErrDecryption, err)}
	}
	return t, nil
}

// SetDateOfBirth stores the calendar date of t. The zero time clears it.
func (u *User) SetDateOfBirth(t time.Time) error {
	if t.IsZero() {
		return u.set(FieldDateOfBirth, "")
	}
	return u.set(FieldDateOfBirth, t.Format(fieldcrypt.DateLayout))
}

func (u *User) Gender() string         { return u.gender }
func (u *User) SetGender(v string)     { u.gender = strings.TrimSpace(v) }
func (u *User) BloodType() string      { return u.bloodType }
func (u *User) SetBloodType(v string)  { u.bloodType = strings.ToUpper(strings.TrimSpace(v)) }
func (u *User) HeightCM() float64      { return u.heightCM }
func (u *User) SetHeightCM(v float64)  { u.heightCM = v }
func (u *User) WeightKG() float64      { return u.weightKG }
func (u *User) SetWeightKG(v float64)  { u.weightKG = v }
func (u *User) PasswordDigest() []byte { return u.passwordDigest }

func (u *User) SetPasswordDigest(d []byte) {
	u.passwordDigest = append([]byte(nil), d...)
}

func (u *User) Lockout() lockout.State     { return u.lockout }
func (u *User) SetLockout(s lockout.State) { u.lockout = s }

func (u *User) IsActive() bool          { return u.active }
func (u *User) SetActive(v bool)        { u.active = v }
func (u *User) EmailVerified() bool     { return u.emailVerified }
func (u *User) SetEmailVerified(v bool) { u.emailVerified = v }
func (u *User) PhoneVerified() bool     { return u.phoneVerified }
func (u *User) SetPhoneVerified(v bool) { u.phoneVerified = v }

func (u *User) CreatedAt() time.Time       { return u.createdAt }
func (u *User) UpdatedAt() time.Time       { return u.updatedAt }
func (u *User) LastLoginAt() time.Time     { return u.lastLoginAt }
func (u *User) SetLastLoginAt(t time.Time) { u.lastLoginAt = t.UTC() }
