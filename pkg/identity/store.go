package identity

import (
	"context"

	"github.com/google/uuid"
)

// Store persists users. Implementations never decrypt; they compare lookup
// hashes byte for byte and enforce uniqueness on fields where Field.Unique
// is true, returning a *DuplicateError.
type Store interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByLookupHash(ctx context.Context, field Field, hash []byte) ([]*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
