package httpapi_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/identity"
)

type MockGates struct {
	mock.Mock
}

func (m *MockGates) RequestContactVerification(ctx context.Context, raw string, purpose auth.Purpose) (*auth.VerificationTicket, error) {
	args := m.Called(ctx, raw, purpose)
	if t := args.Get(0); t != nil {
		return t.(*auth.VerificationTicket), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGates) ConfirmContactVerification(ctx context.Context, raw, code string, purpose auth.Purpose) (bool, error) {
	args := m.Called(ctx, raw, code, purpose)
	return args.Bool(0), args.Error(1)
}

func (m *MockGates) Register(ctx context.Context, p auth.RegisterParams) (*identity.User, error) {
	args := m.Called(ctx, p)
	if u := args.Get(0); u != nil {
		return u.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGates) Authenticate(ctx context.Context, identifier, password string) (*identity.User, error) {
	args := m.Called(ctx, identifier, password)
	if u := args.Get(0); u != nil {
		return u.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockGates) ResetPassword(ctx context.Context, raw, code, newPassword string) (*identity.User, error) {
	args := m.Called(ctx, raw, code, newPassword)
	if u := args.Get(0); u != nil {
		return u.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}
