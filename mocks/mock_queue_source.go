package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docingest/internal/port"
)

// MockQueueSource is a mock implementation of port.QueueSource.
type MockQueueSource struct {
	mock.Mock
}

func (m *MockQueueSource) ClaimQueued(ctx context.Context, available int) ([]port.QueuedDocument, error) {
	args := m.Called(ctx, available)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.QueuedDocument), args.Error(1)
}
