package queue

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockQueue records Enqueue and Worker calls for handler tests.
type MockQueue struct {
	mock.Mock
}

var _ Queue = (*MockQueue)(nil)

func (q *MockQueue) Enqueue(ctx context.Context, task Task) error {
	return q.Called(ctx, task).Error(0)
}

func (q *MockQueue) Worker(ctx context.Context, taskType TaskType, handler Handler) error {
	return q.Called(ctx, taskType, handler).Error(0)
}
