package auth_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/bpmonitor/idvault/pkg/auth"
	"github.com/bpmonitor/idvault/pkg/contact"
)

type MockDispatcher struct {
	mock.Mock

	mu    sync.Mutex
	codes map[string]string
}

func (m *MockDispatcher) Dispatch(ctx context.Context, to contact.Contact, code string, purpose auth.Purpose) error {
	args := m.Called(ctx, to, code, purpose)
	if args.Error(0) == nil {
		m.mu.Lock()
		if m.codes == nil {
			m.codes = make(map[string]string)
		}
		m.codes[to.Value] = code
		m.mu.Unlock()
	}
	return args.Error(0)
}

// LastCode returns the last code delivered to value.
func (m *MockDispatcher) LastCode(value string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[value]
}
