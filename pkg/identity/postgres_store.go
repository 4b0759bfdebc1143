package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bpmonitor/idvault/pkg/fieldcrypt"
	"github.com/bpmonitor/idvault/pkg/lockout"
	"github.com/bpmonitor/idvault/pkg/pg"
)

// DB is the part of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps users in the identities table.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `id, role,
	email_enc, email_hash, phone_enc, phone_hash, full_name_enc, full_name_hash,
	citizen_id_enc, citizen_id_hash, medical_license_enc, medical_license_hash,
	date_of_birth_enc, date_of_birth_hash,
	gender, blood_type, height_cm, weight_kg,
	password_digest, failed_attempts, locked_until,
	is_active, email_verified, phone_verified,
	last_login_at, created_at, updated_at`

const insertUser = `INSERT INTO identities (` + userColumns + `) VALUES (
	@id, @role,
	@email_enc, @email_hash, @phone_enc, @phone_hash, @full_name_enc, @full_name_hash,
	@citizen_id_enc, @citizen_id_hash, @medical_license_enc, @medical_license_hash,
	@date_of_birth_enc, @date_of_birth_hash,
	@gender, @blood_type, @height_cm, @weight_kg,
	@password_digest, @failed_attempts, @locked_until,
	@is_active, @email_verified, @phone_verified,
	@last_login_at, @created_at, @updated_at)`

const updateUser = `UPDATE identities SET
	role = @role,
	email_enc = @email_enc, email_hash = @email_hash,
	phone_enc = @phone_enc, phone_hash = @phone_hash,
	full_name_enc = @full_name_enc, full_name_hash = @full_name_hash,
	citizen_id_enc = @citizen_id_enc, citizen_id_hash = @citizen_id_hash,
	medical_license_enc = @medical_license_enc, medical_license_hash = @medical_license_hash,
	date_of_birth_enc = @date_of_birth_enc, date_of_birth_hash = @date_of_birth_hash,
	gender = @gender, blood_type = @blood_type, height_cm = @height_cm, weight_kg = @weight_kg,
	password_digest = @password_digest, failed_attempts = @failed_attempts, locked_until = @locked_until,
	is_active = @is_active, email_verified = @email_verified, phone_verified = @phone_verified,
	last_login_at = @last_login_at, updated_at = @updated_at
	WHERE id = @id`

func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	if _, err := s.db.Exec(ctx, insertUser, userArgs(u)); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, u *User) error {
	tag, err := s.db.Exec(ctx, updateUser, userArgs(u))
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	users, err := s.query(ctx, `SELECT `+userColumns+` FROM identities WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return users[0], nil
}

func (s *PostgresStore) FindByLookupHash(ctx context.Context, field Field, hash []byte) ([]*User, error) {
	if !field.Searchable() {
		return nil, ErrInvalidField
	}
	if len(hash) == 0 {
		return nil, nil
	}
	// field is one of the fixed Field constants, never user input.
	q := `SELECT ` + userColumns + ` FROM identities WHERE ` + string(field) + `_hash = $1 ORDER BY created_at`
	return s.query(ctx, q, hash)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresStore) query(ctx context.Context, q string, args ...any) ([]*User, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[userRow])
	if err != nil {
		return nil, err
	}

	users := make([]*User, 0, len(records))
	for _, r := range records {
		users = append(users, r.toUser())
	}
	return users, nil
}

func mapWriteError(err error) error {
	if !pg.IsDuplicateKeyError(err) {
		return err
	}
	name := pg.ConstraintName(err)
	for _, f := range Fields {
		if strings.HasPrefix(name, "identities_"+string(f)+"_hash") {
			return errors.Join(&DuplicateError{Field: f}, err)
		}
	}
	return errors.Join(&DuplicateError{Field: "id"}, err)
}

// userRow mirrors one identities row.
type userRow struct {
	ID                 uuid.UUID  `db:"id"`
	Role               string     `db:"role"`
	EmailEnc           []byte     `db:"email_enc"`
	EmailHash          []byte     `db:"email_hash"`
	PhoneEnc           []byte     `db:"phone_enc"`
	PhoneHash          []byte     `db:"phone_hash"`
	FullNameEnc        []byte     `db:"full_name_enc"`
	FullNameHash       []byte     `db:"full_name_hash"`
	CitizenIDEnc       []byte     `db:"citizen_id_enc"`
	CitizenIDHash      []byte     `db:"citizen_id_hash"`
	MedicalLicenseEnc  []byte     `db:"medical_license_enc"`
	MedicalLicenseHash []byte     `db:"medical_license_hash"`
	DateOfBirthEnc     []byte     `db:"date_of_birth_enc"`
	DateOfBirthHash    []byte     `db:"date_of_birth_hash"`
	Gender             string     `db:"gender"`
	BloodType          string     `db:"blood_type"`
	HeightCM           float64    `db:"height_cm"`
	WeightKG           float64    `db:"weight_kg"`
	PasswordDigest     []byte     `db:"password_digest"`
	FailedAttempts     int16      `db:"failed_attempts"`
	LockedUntil        *time.Time `db:"locked_until"`
	IsActive           bool       `db:"is_active"`
	EmailVerified      bool       `db:"email_verified"`
	PhoneVerified      bool       `db:"phone_verified"`
	LastLoginAt        *time.Time `db:"last_login_at"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

func (r userRow) toUser() *User {
	u := &User{
		id:             r.ID,
		role:           Role(r.Role),
		email:          fieldcrypt.Sealed{Ciphertext: r.EmailEnc, LookupHash: r.EmailHash},
		phone:          fieldcrypt.Sealed{Ciphertext: r.PhoneEnc, LookupHash: r.PhoneHash},
		fullName:       fieldcrypt.Sealed{Ciphertext: r.FullNameEnc, LookupHash: r.FullNameHash},
		citizenID:      fieldcrypt.Sealed{Ciphertext: r.CitizenIDEnc, LookupHash: r.CitizenIDHash},
		medicalLicense: fieldcrypt.Sealed{Ciphertext: r.MedicalLicenseEnc, LookupHash: r.MedicalLicenseHash},
		dateOfBirth:    fieldcrypt.Sealed{Ciphertext: r.DateOfBirthEnc, LookupHash: r.DateOfBirthHash},
		gender:         r.Gender,
		bloodType:      r.BloodType,
		heightCM:       r.HeightCM,
		weightKG:       r.WeightKG,
		passwordDigest: r.PasswordDigest,
		lockout:        lockout.State{FailedAttempts: uint8(r.FailedAttempts)},
		active:         r.IsActive,
		emailVerified:  r.EmailVerified,
		phoneVerified:  r.PhoneVerified,
		createdAt:      r.CreatedAt,
		updatedAt:      r.UpdatedAt,
	}
	if r.LockedUntil != nil {
		u.lockout.LockedUntil = *r.LockedUntil
	}
	if r.LastLoginAt != nil {
		u.lastLoginAt = *r.LastLoginAt
	}
	return u
}

func userArgs(u *User) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":                   u.id,
		"role":                 string(u.role),
		"email_enc":            nullBytes(u.email.Ciphertext),
		"email_hash":           nullBytes(u.email.LookupHash),
		"phone_enc":            nullBytes(u.phone.Ciphertext),
		"phone_hash":           nullBytes(u.phone.LookupHash),
		"full_name_enc":        nullBytes(u.fullName.Ciphertext),
		"full_name_hash":       nullBytes(u.fullName.LookupHash),
		"citizen_id_enc":       nullBytes(u.citizenID.Ciphertext),
		"citizen_id_hash":      nullBytes(u.citizenID.LookupHash),
		"medical_license_enc":  nullBytes(u.medicalLicense.Ciphertext),
		"medical_license_hash": nullBytes(u.medicalLicense.LookupHash),
		"date_of_birth_enc":    nullBytes(u.dateOfBirth.Ciphertext),
		"date_of_birth_hash":   nullBytes(u.dateOfBirth.LookupHash),
		"gender":               u.gender,
		"blood_type":           u.bloodType,
		"height_cm":            u.heightCM,
		"weight_kg":            u.weightKG,
		"password_digest":      u.passwordDigest,
		"failed_attempts":      int16(u.lockout.FailedAttempts),
		"locked_until":         nullTime(u.lockout.LockedUntil),
		"is_active":            u.active,
		"email_verified":       u.emailVerified,
		"phone_verified":       u.phoneVerified,
		"last_login_at":        nullTime(u.lastLoginAt),
		"created_at":           u.createdAt,
		"updated_at":           u.updatedAt,
	}
}

// nullBytes maps an absent value to SQL NULL rather than an empty bytea.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
