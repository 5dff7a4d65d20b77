package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockListCache struct {
	mock.Mock
}

func (m *MockListCache) GetPage(ctx context.Context, owner string, limit, offset int) ([]byte, int64, bool) {
	args := m.Called(ctx, owner, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2)
	}
	return args.Get(0).([]byte), args.Get(1).(int64), args.Bool(2)
}

func (m *MockListCache) SetPage(ctx context.Context, owner string, version int64, limit, offset int, page []byte) {
	m.Called(ctx, owner, version, limit, offset, page)
}

func (m *MockListCache) Invalidate(ctx context.Context, owner string) {
	m.Called(ctx, owner)
}
