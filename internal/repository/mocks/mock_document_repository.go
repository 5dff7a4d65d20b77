package mocks

import (
	"context"

	"docingest/internal/model"
	"docingest/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document, risks []model.DocumentRisk, audit *model.AuditLog) (*model.Document, error) {
	args := m.Called(ctx, doc, risks, audit)
	if f, ok := args.Get(0).(func(context.Context, *model.Document, []model.DocumentRisk, *model.AuditLog) *model.Document); ok {
		return f(ctx, doc, risks, audit), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Document, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, ownerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockDocumentRepository) ListRisks(ctx context.Context, documentID string) ([]model.DocumentRisk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRisk), args.Error(1)
}
