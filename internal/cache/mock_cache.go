package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCache is a mock implementation of the Cache interface for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) SetProgress(ctx context.Context, docID uuid.UUID, p Progress, ttl time.Duration) error {
	args := m.Called(ctx, docID, p, ttl)
	return args.Error(0)
}

func (m *MockCache) GetProgress(ctx context.Context, docID uuid.UUID) (*Progress, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Progress), args.Error(1)
}

func (m *MockCache) ClearProgress(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
