package repository

import (
	"context"

	"docingest/internal/model"
)

// DocumentRepository defines data access for documents and their child records using SQL
// queries only. No business logic here: strictly persistence operations.
// Ownership-scoped lookups return sql.ErrNoRows both when the row is missing and when it
// belongs to someone else.
type DocumentRepository interface {
	// Create inserts the document, its risk rows and the audit record in one transaction.
	// Either everything is stored or nothing is. audit may be nil.
	Create(ctx context.Context, doc *model.Document, risks []model.DocumentRisk, audit *model.AuditLog) (*model.Document, error)

	// FindByIDAndOwner returns a document, including its encoded content.
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Document, error)

	// ListByOwner returns a page of the owner's documents (content omitted) and their total count.
	ListByOwner(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.Document], error)

	// DeleteByIDAndOwner hard-deletes an owned document. Child rows cascade.
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error

	// ListRisks returns the risk rows of a document in insertion order.
	ListRisks(ctx context.Context, documentID string) ([]model.DocumentRisk, error)
}

// ShareRepository appends and lists document sharing grants.
type ShareRepository interface {
	Create(ctx context.Context, share *model.DocumentShare) (*model.DocumentShare, error)
	ListByDocument(ctx context.Context, documentID string) ([]model.DocumentShare, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
