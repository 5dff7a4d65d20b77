package postgres

import (
	"context"
	"database/sql"

	"docingest/internal/model"
	"docingest/internal/repository"
)

// SharePostgres is a PostgreSQL implementation of repository.ShareRepository.
type SharePostgres struct {
	db *sql.DB
}

// NewSharePostgres creates a new SharePostgres repository.
func NewSharePostgres(db *sql.DB) *SharePostgres {
	return &SharePostgres{db: db}
}

var _ repository.ShareRepository = (*SharePostgres)(nil)

// Create appends a sharing grant.
func (r *SharePostgres) Create(ctx context.Context, share *model.DocumentShare) (*model.DocumentShare, error) {
	const q = `
		INSERT INTO documents_share (document_id, grantee_id, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, document_id, grantee_id, created_at
	`
	var out model.DocumentShare
	if err := r.db.QueryRowContext(ctx, q, share.DocumentID, share.GranteeID, share.CreatedAt).
		Scan(&out.ID, &out.DocumentID, &out.GranteeID, &out.CreatedAt); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByDocument returns the grants of a document, oldest first.
func (r *SharePostgres) ListByDocument(ctx context.Context, documentID string) ([]model.DocumentShare, error) {
	const q = `
		SELECT id, document_id, grantee_id, created_at
		FROM documents_share
		WHERE document_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shares := make([]model.DocumentShare, 0)
	for rows.Next() {
		var s model.DocumentShare
		if err := rows.Scan(&s.ID, &s.DocumentID, &s.GranteeID, &s.CreatedAt); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}
