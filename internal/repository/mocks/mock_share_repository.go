package mocks

import (
	"context"

	"docingest/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) Create(ctx context.Context, share *model.DocumentShare) (*model.DocumentShare, error) {
	args := m.Called(ctx, share)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentShare), args.Error(1)
}

func (m *MockShareRepository) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentShare, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentShare), args.Error(1)
}
