package model

import "time"

// Document lifecycle tags.
const (
	StatusProcessing = "PROCESSING"
)

// Classification outcomes recorded next to the annotation so "nothing found" and
// "classifier unavailable" stay distinguishable.
const (
	ClassificationFound    = "FOUND"
	ClassificationNone     = "NONE"
	ClassificationDegraded = "DEGRADED"
)

// Document is the persisted unit of ingested content.
// This is a pure domain model with no database-specific dependencies or tags.
type Document struct {
	ID                      string    `json:"id"`
	Filename                string    `json:"filename"`
	Content                 string    `json:"-"`
	MimeType                string    `json:"mime_type"`
	FileSize                int64     `json:"file_size"`
	OwnerID                 string    `json:"-"`
	UploadedAt              time.Time `json:"uploaded_at"`
	LastModifiedAt          time.Time `json:"last_modified_at"`
	RiskScore               int       `json:"risk_score"`
	Status                  string    `json:"status"`
	ClassificationStatus    string    `json:"classification_status"`
	SensitiveInfoAnnotation string    `json:"sensitive_info_annotation"`
}

// DocumentRisk is one finding attached to a document. Append-only.
type DocumentRisk struct {
	ID         int64  `json:"id"`
	DocumentID string `json:"document_id"`
	RiskType   string `json:"risk_type"`
	RiskKey    string `json:"risk_key"`
	Content    string `json:"content"`
}

// DocumentShare grants another identity access to a document. Append-only.
type DocumentShare struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	GranteeID  string    `json:"grantee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuditLog is a typed audit record with free-form JSON details.
type AuditLog struct {
	ID      int64          `json:"id"`
	LogType string         `json:"log_type"`
	Details map[string]any `json:"details"`
}
