package mocks

import (
	"context"

	"docingest/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockScanner struct {
	mock.Mock
}

func (m *MockScanner) Scan(ctx context.Context, payload []byte, filename string) (model.Verdict, error) {
	args := m.Called(ctx, payload, filename)
	return args.Get(0).(model.Verdict), args.Error(1)
}
