package audit

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
	ResultError   Result = "error"
)

func (r Result) Valid() bool {
	switch r {
	case ResultSuccess, ResultFailure, ResultError:
		return true
	}
	return false
}

// Action names an audited operation.
type Action string

const (
	ActionOTPRequested    Action = "otp.requested"
	ActionOTPVerified     Action = "otp.verified"
	ActionUserRegistered  Action = "user.registered"
	ActionLogin           Action = "user.login"
	ActionAccountLocked   Action = "user.locked"
	ActionPasswordReset   Action = "user.password_reset"
	ActionPasswordChanged Action = "user.password_changed"
	ActionContactUpdated  Action = "user.contact_updated"
)

// Event is one audit record.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	Action      Action         `json:"action"`
	Result      Result         `json:"result"`
	UserID      string         `json:"user_id,omitempty"`
	ContactHash string         `json:"contact_hash,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	RequestID   string         `json:"request_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (e *Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	if !e.Result.Valid() {
		return fmt.Errorf("%w: unknown result %q", ErrEventValidation, e.Result)
	}
	return nil
}

// EventOption sets optional event fields.
type EventOption func(*Event)

func WithUserID(id string) EventOption {
	return func(e *Event) { e.UserID = id }
}

// WithContactHash references a contact by its lookup hash.
func WithContactHash(hash []byte) EventOption {
	return func(e *Event) {
		if len(hash) > 0 {
			e.ContactHash = hex.EncodeToString(hash)
		}
	}
}

// WithReason sets a short machine readable cause, such as "bad_password".
func WithReason(reason string) EventOption {
	return func(e *Event) { e.Reason = reason }
}

func WithMetadata(key string, value any) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]any)
		}
		e.Metadata[key] = value
	}
}

// Criteria selects events. Zero fields do not filter. Results are newest first.
type Criteria struct {
	UserID      string
	ContactHash string
	Action      Action
	Result      Result
	Since       time.Time
	Until       time.Time
	Limit       int
}

// Storage persists events.
type Storage interface {
	Store(ctx context.Context, events ...Event) error
	Query(ctx context.Context, c Criteria) ([]Event, error)
}
