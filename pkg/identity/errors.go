package identity

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound = errors.New("identity: user not found")
	ErrDuplicate    = errors.New("identity: duplicate value")
	ErrInvalidRole  = errors.New("identity: invalid role")
	ErrInvalidField = errors.New("identity: field is not searchable")
	ErrNoCipher     = errors.New("identity: user is not bound to a cipher")
)

// DuplicateError names the field whose unique lookup hash already exists.
type DuplicateError struct {
	Field Field
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("identity: %s already registered", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// FieldError reports a sealed field of a user that could not be opened.
// It unwraps to the cipher error, typically fieldcrypt.ErrDecryption.
type FieldError struct {
	UserID uuid.UUID
	Field  Field
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("identity: open %s of user %s: %v", e.Field, e.UserID, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
