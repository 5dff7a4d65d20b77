package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"docingest/internal/model"
	"docingest/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const summaryColumns = `id, filename, mime_type, file_size, owner_id, uploaded_at, last_modified_at,
		risk_score, status, classification_status, sensitive_info`

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(s scanner, d *model.Document, extra ...any) error {
	dest := []any{
		&d.ID,
		&d.Filename,
		&d.MimeType,
		&d.FileSize,
		&d.OwnerID,
		&d.UploadedAt,
		&d.LastModifiedAt,
		&d.RiskScore,
		&d.Status,
		&d.ClassificationStatus,
		&d.SensitiveInfoAnnotation,
	}
	return s.Scan(append(dest, extra...)...)
}

// Create inserts the document row, its risks and the audit record inside one transaction.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document, risks []model.DocumentRisk, audit *model.AuditLog) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const qDoc = `
		INSERT INTO documents (id, filename, content, mime_type, file_size, owner_id, uploaded_at,
			last_modified_at, risk_score, status, classification_status, sensitive_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + summaryColumns + `, content`
	row := tx.QueryRowContext(ctx, qDoc,
		doc.ID,
		doc.Filename,
		doc.Content,
		doc.MimeType,
		doc.FileSize,
		doc.OwnerID,
		doc.UploadedAt,
		doc.LastModifiedAt,
		doc.RiskScore,
		doc.Status,
		doc.ClassificationStatus,
		doc.SensitiveInfoAnnotation,
	)
	var out model.Document
	if err := scanSummary(row, &out, &out.Content); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	const qRisk = `
		INSERT INTO documents_risk (document_id, risk_type, risk_key, content)
		VALUES ($1, $2, $3, $4)
	`
	for _, risk := range risks {
		if _, err := tx.ExecContext(ctx, qRisk, out.ID, risk.RiskType, risk.RiskKey, risk.Content); err != nil {
			return nil, fmt.Errorf("insert document risk: %w", err)
		}
	}

	if audit != nil {
		details, err := json.Marshal(audit.Details)
		if err != nil {
			return nil, fmt.Errorf("marshal audit details: %w", err)
		}
		const qAudit = `INSERT INTO audit_logs (log_type, details_logs) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, qAudit, audit.LogType, details); err != nil {
			return nil, fmt.Errorf("insert audit log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return &out, nil
}

// FindByIDAndOwner fetches a single owned document with its content.
func (r *DocumentPostgres) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.Document, error) {
	const q = `
		SELECT ` + summaryColumns + `, content
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`
	row := r.db.QueryRowContext(ctx, q, id, ownerID)
	var d model.Document
	if err := scanSummary(row, &d, &d.Content); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByOwner returns the owner's documents newest first using LIMIT/OFFSET and a total count.
func (r *DocumentPostgres) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE owner_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, ownerID).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + summaryColumns + `
		FROM documents
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, ownerID, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := scanSummary(rows, &d); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// DeleteByIDAndOwner removes an owned document. It returns sql.ErrNoRows when nothing matched.
func (r *DocumentPostgres) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	const q = `DELETE FROM documents WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListRisks returns the risk rows of a document.
func (r *DocumentPostgres) ListRisks(ctx context.Context, documentID string) ([]model.DocumentRisk, error) {
	const q = `
		SELECT id, document_id, risk_type, risk_key, content
		FROM documents_risk
		WHERE document_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	risks := make([]model.DocumentRisk, 0)
	for rows.Next() {
		var rk model.DocumentRisk
		if err := rows.Scan(&rk.ID, &rk.DocumentID, &rk.RiskType, &rk.RiskKey, &rk.Content); err != nil {
			return nil, err
		}
		risks = append(risks, rk)
	}
	return risks, rows.Err()
}
