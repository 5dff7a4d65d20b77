package mocks

import (
	"context"

	"docingest/internal/model"
	"docingest/internal/service"
	"docingest/internal/upload"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) Ingest(ctx context.Context, f upload.File, ownerID, callerAnnotation string) (*model.Document, error) {
	args := m.Called(ctx, f, ownerID, callerAnnotation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) IngestFixture(ctx context.Context, key, ownerID string) (*model.Document, error) {
	args := m.Called(ctx, key, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, ownerID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id, ownerID string) (*model.Document, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, ownerID string) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *MockDocumentService) ReadContent(doc *model.Document) []byte {
	args := m.Called(doc)
	return args.Get(0).([]byte)
}

func (m *MockDocumentService) ListRisks(ctx context.Context, id, ownerID string) ([]model.DocumentRisk, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentRisk), args.Error(1)
}

func (m *MockDocumentService) Share(ctx context.Context, id, ownerID, granteeID string) (*model.DocumentShare, error) {
	args := m.Called(ctx, id, ownerID, granteeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentShare), args.Error(1)
}

func (m *MockDocumentService) ListShares(ctx context.Context, id, ownerID string) ([]model.DocumentShare, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentShare), args.Error(1)
}
