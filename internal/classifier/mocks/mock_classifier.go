package mocks

import (
	"context"

	"docingest/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, payload []byte, filename string) ([]model.Span, error) {
	args := m.Called(ctx, payload, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Span), args.Error(1)
}
