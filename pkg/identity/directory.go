package identity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bpmonitor/idvault/pkg/contact"
)

// Directory is the plaintext-facing view of a Store.
type Directory struct {
	store  Store
	cipher Cipher
	schema *Schema
	now    func() time.Time
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

func WithDirectoryClock(now func() time.Time) DirectoryOption {
	return func(d *Directory) {
		if now != nil {
			d.now = now
		}
	}
}

// WithCountryCode sets the calling code national-format phone numbers are
// completed with before hashing. Use the code contacts are parsed with.
func WithCountryCode(code string) DirectoryOption {
	return func(d *Directory) {
		d.schema = NewSchema(code)
	}
}

func NewDirectory(store Store, cipher Cipher, opts ...DirectoryOption) *Directory {
	d := &Directory{store: store, cipher: cipher, schema: defaultSchema, now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewUser creates an unsaved user bound to the directory's cipher.
func (d *Directory) NewUser(role Role) (*User, error) {
	u, err := NewUser(d.cipher, role)
	if err != nil {
		return nil, err
	}
	u.schema = d.schema
	now := d.now().UTC()
	u.createdAt, u.updatedAt = now, now
	return u, nil
}

func (d *Directory) Create(ctx context.Context, u *User) error {
	return d.store.Create(ctx, u)
}

// Update stamps UpdatedAt and saves u.
func (d *Directory) Update(ctx context.Context, u *User) error {
	u.updatedAt = d.now().UTC()
	return d.store.Update(ctx, u)
}

func (d *Directory) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := d.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.bind(d.cipher, d.schema), nil
}

func (d *Directory) Delete(ctx context.Context, id uuid.UUID) error {
	return d.store.Delete(ctx, id)
}

// LookupHash hashes a query value exactly as the field's setter does.
func (d *Directory) LookupHash(field Field, value string) []byte {
	spec := d.schema.Spec(field)
	return d.cipher.LookupHash(spec.Domain, value, spec.Normalize)
}

// Find returns every user whose field equals value after normalization.
func (d *Directory) Find(ctx context.Context, field Field, value string) ([]*User, error) {
	if !field.Searchable() {
		return nil, ErrInvalidField
	}
	users, err := d.store.FindByLookupHash(ctx, field, d.LookupHash(field, value))
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.bind(d.cipher, d.schema)
	}
	return users, nil
}

func (d *Directory) findOne(ctx context.Context, field Field, value string) (*User, error) {
	users, err := d.Find(ctx, field, value)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (d *Directory) FindByEmail(ctx context.Context, email string) (*User, error) {
	return d.findOne(ctx, FieldEmail, email)
}

// FindByPhone returns all users sharing the number.
func (d *Directory) FindByPhone(ctx context.Context, phone string) ([]*User, error) {
	return d.Find(ctx, FieldPhone, phone)
}

func (d *Directory) FindByCitizenID(ctx context.Context, id string) (*User, error) {
	return d.findOne(ctx, FieldCitizenID, id)
}

func (d *Directory) FindByMedicalLicense(ctx context.Context, license string) (*User, error) {
	return d.findOne(ctx, FieldMedicalLicense, license)
}

// FindByContact searches the email or phone column depending on the contact kind.
func (d *Directory) FindByContact(ctx context.Context, c contact.Contact) ([]*User, error) {
	return d.Find(ctx, ContactField(c), c.Value)
}

// Exists reports whether any user holds value in field.
func (d *Directory) Exists(ctx context.Context, field Field, value string) (bool, error) {
	users, err := d.Find(ctx, field, value)
	if err != nil {
		return false, err
	}
	return len(users) > 0, nil
}

// ContactField maps a contact kind to the field it is stored in.
func ContactField(c contact.Contact) Field {
	if c.Kind == contact.KindPhone {
		return FieldPhone
	}
	return FieldEmail
}
