package auth

import (
	"context"

	"github.com/bpmonitor/idvault/pkg/contact"
)

// Dispatcher delivers a code to its contact. A nil error means the provider
// accepted the message.
type Dispatcher interface {
	Dispatch(ctx context.Context, to contact.Contact, code string, purpose Purpose) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, to contact.Contact, code string, purpose Purpose) error

func (f DispatcherFunc) Dispatch(ctx context.Context, to contact.Contact, code string, purpose Purpose) error {
	return f(ctx, to, code, purpose)
}
