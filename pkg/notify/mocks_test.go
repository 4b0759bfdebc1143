package notify_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bpmonitor/idvault/pkg/notify"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) Send(ctx context.Context, msg notify.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
