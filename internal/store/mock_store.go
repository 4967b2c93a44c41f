package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"clausewise/internal/analysis"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateDocument(ctx context.Context, filename string) (Document, error) {
	args := m.Called(ctx, filename)
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockStore) GetDocument(ctx context.Context, id uuid.UUID) (Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Document), args.Error(1)
}

func (m *MockStore) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status DocumentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStore) SaveReport(ctx context.Context, docID uuid.UUID, report analysis.Report) error {
	args := m.Called(ctx, docID, report)
	return args.Error(0)
}

func (m *MockStore) GetReport(ctx context.Context, docID uuid.UUID) (Report, error) {
	args := m.Called(ctx, docID)
	return args.Get(0).(Report), args.Error(1)
}
