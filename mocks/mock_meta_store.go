package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docingest/internal/mapper"
)

// MockMetaStore is a mock implementation of port.MetaStore.
type MockMetaStore struct {
	mock.Mock
}

func (m *MockMetaStore) InsertBatch(ctx context.Context, rows []mapper.MetaRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockMetaStore) DeleteByIDs(ctx context.Context, elementIDs []string) error {
	args := m.Called(ctx, elementIDs)
	return args.Error(0)
}
