package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docingest/internal/mapper"
)

// MockContentStore is a mock implementation of port.ContentStore.
type MockContentStore struct {
	mock.Mock
}

func (m *MockContentStore) InsertBatch(ctx context.Context, rows []mapper.ContentRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}
