package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"docingest/internal/port"
)

// MockParseServiceClient is a mock implementation of port.ParseServiceClient.
type MockParseServiceClient struct {
	mock.Mock
}

func (m *MockParseServiceClient) Submit(ctx context.Context, fileBytes []byte, fileName string, opts port.SubmitOptions) (string, error) {
	args := m.Called(ctx, fileBytes, fileName, opts)
	return args.String(0), args.Error(1)
}

func (m *MockParseServiceClient) WaitForCompletion(ctx context.Context, taskID string, pollInterval, overallTimeout time.Duration) error {
	args := m.Called(ctx, taskID, pollInterval, overallTimeout)
	return args.Error(0)
}

func (m *MockParseServiceClient) FetchData(ctx context.Context, taskID string) (*port.TaskData, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.TaskData), args.Error(1)
}
