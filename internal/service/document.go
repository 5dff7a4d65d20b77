package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"docingest/internal/annotation"
	"docingest/internal/cache"
	"docingest/internal/classifier"
	"docingest/internal/metrics"
	"docingest/internal/model"
	"docingest/internal/repository"
	"docingest/internal/sanitize"
	"docingest/internal/scanner"
	"docingest/internal/storage"
	"docingest/internal/upload"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrOwnerRequired    = errors.New("owner is required")
	ErrPayloadRequired  = errors.New("file is required")
	ErrGranteeRequired  = errors.New("grantee is required")
	ErrNotFound         = errors.New("document not found")
	ErrFixturesDisabled = errors.New("fixture source is not configured")
)

// AuditDocumentIngested is the audit log type written for every persisted document.
const AuditDocumentIngested = "DOCUMENT_INGESTED"

const defaultPageSize = 10

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Total int              `json:"total"`
}

// DocumentService defines the ingestion pipeline and the owner-scoped access to its results.
// Every read and mutation is scoped to ownerID; a document owned by someone else is reported
// as ErrNotFound.
type DocumentService interface {
	// Ingest scans, classifies, annotates and persists one upload as a single unit.
	// A threat verdict returns *scanner.RejectionError and nothing is stored.
	Ingest(ctx context.Context, f upload.File, ownerID, callerAnnotation string) (*model.Document, error)

	// IngestFixture runs the object stored under key in the fixture source through Ingest.
	IngestFixture(ctx context.Context, key, ownerID string) (*model.Document, error)

	// List returns the owner's documents using limit/offset and a total count.
	List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error)

	// Get returns a single owned document, including its encoded content.
	Get(ctx context.Context, id, ownerID string) (*model.Document, error)

	// Delete hard-deletes an owned document.
	Delete(ctx context.Context, id, ownerID string) error

	// ReadContent decodes the stored payload. Malformed content yields an empty slice.
	ReadContent(doc *model.Document) []byte

	ListRisks(ctx context.Context, id, ownerID string) ([]model.DocumentRisk, error)
	Share(ctx context.Context, id, ownerID, granteeID string) (*model.DocumentShare, error)
	ListShares(ctx context.Context, id, ownerID string) ([]model.DocumentShare, error)
}

// SecurityGate is the hard pre-persistence check.
type SecurityGate interface {
	Check(ctx context.Context, payload []byte, filename string) (model.Verdict, error)
}

// SensitiveDataClassifier is the soft classification step. It never fails.
type SensitiveDataClassifier interface {
	Classify(ctx context.Context, payload []byte, filename string) classifier.Result
}

// Deps wires a DocumentService. Fixtures, Cache and Metrics are optional.
type Deps struct {
	Documents  repository.DocumentRepository
	Shares     repository.ShareRepository
	Gate       SecurityGate
	Classifier SensitiveDataClassifier
	Fixtures   storage.Storage
	Cache      cache.ListCache
	Metrics    *metrics.Ingest
	Clock      Clock
	IDs        IDGenerator
	Log        zerolog.Logger
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	docs       repository.DocumentRepository
	shares     repository.ShareRepository
	gate       SecurityGate
	classifier SensitiveDataClassifier
	fixtures   storage.Storage
	cache      cache.ListCache
	metrics    *metrics.Ingest
	clock      Clock
	ids        IDGenerator
	log        zerolog.Logger
	tracer     trace.Tracer
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d Deps) DocumentService {
	s := &documentService{
		docs:       d.Documents,
		shares:     d.Shares,
		gate:       d.Gate,
		classifier: d.Classifier,
		fixtures:   d.Fixtures,
		cache:      d.Cache,
		metrics:    d.Metrics,
		clock:      d.Clock,
		ids:        d.IDs,
		log:        d.Log.With().Str("component", "document_service").Logger(),
		tracer:     otel.Tracer("docingest/internal/service"),
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.ids == nil {
		s.ids = UUIDGenerator{}
	}
	if s.cache == nil {
		// A nil *cache.Redis always misses.
		s.cache = (*cache.Redis)(nil)
	}
	return s
}

func (s *documentService) Ingest(ctx context.Context, f upload.File, ownerID, callerAnnotation string) (*model.Document, error) {
	if f == nil {
		return nil, ErrPayloadRequired
	}
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}

	ctx, span := s.tracer.Start(ctx, "document.ingest")
	defer span.End()

	payload, err := f.Bytes()
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("read upload: %w", err))
	}
	declaredName := f.Filename()
	span.SetAttributes(attribute.Int("document.size", len(payload)))

	// Scan first. Nothing else runs without an accepting verdict.
	verdict, err := s.scan(ctx, payload, declaredName)
	if err != nil {
		var rejection *scanner.RejectionError
		if errors.As(err, &rejection) {
			s.metrics.Outcome(metrics.OutcomeRejected)
			span.SetStatus(codes.Error, "rejected")
			return nil, err
		}
		return nil, s.fail(span, err)
	}

	classified := s.classify(ctx, payload, declaredName)

	now := s.clock.Now().UTC()
	doc := &model.Document{
		ID:                      s.ids.New(),
		Filename:                sanitize.Text(declaredName),
		Content:                 sanitize.EncodeBinary(payload),
		MimeType:                sanitize.Text(sanitize.ContentType(declaredName, sanitize.Text(f.ContentType()))),
		FileSize:                int64(len(payload)),
		OwnerID:                 ownerID,
		UploadedAt:              now,
		LastModifiedAt:          now,
		RiskScore:               scanner.RiskScore(verdict),
		Status:                  model.StatusProcessing,
		ClassificationStatus:    classified.Status,
		SensitiveInfoAnnotation: annotation.Build(callerAnnotation, classified.Spans, verdict),
	}

	risks := make([]model.DocumentRisk, 0, len(classified.Spans))
	for _, sp := range classified.Spans {
		risks = append(risks, model.DocumentRisk{
			DocumentID: doc.ID,
			RiskType:   sanitize.Text(sp.Type),
			RiskKey:    sanitize.Text(sp.Value),
			Content:    strconv.Itoa(sp.Start) + "-" + strconv.Itoa(sp.End),
		})
	}

	audit := &model.AuditLog{
		LogType: AuditDocumentIngested,
		Details: map[string]any{
			"document_id":           doc.ID,
			"owner_id":              ownerID,
			"file_hash":             verdict.ContentHash,
			"scan_status":           scanStatus(verdict),
			"classification_status": classified.Status,
			"risk_score":            doc.RiskScore,
		},
	}

	start := time.Now()
	stored, err := s.docs.Create(ctx, doc, risks, audit)
	s.metrics.Stage("persist", start)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("persist document: %w", err))
	}

	s.cache.Invalidate(ctx, ownerID)

	outcome := metrics.OutcomeAccepted
	if verdict.Suspicious {
		outcome = metrics.OutcomeSuspicious
	}
	s.metrics.Outcome(outcome)
	span.SetAttributes(attribute.String("document.id", stored.ID))

	s.log.Info().
		Str("document_id", stored.ID).
		Str("filename", stored.Filename).
		Int64("file_size", stored.FileSize).
		Int("risk_score", stored.RiskScore).
		Str("classification_status", stored.ClassificationStatus).
		Msg("document_persisted")

	return stored, nil
}

func (s *documentService) scan(ctx context.Context, payload []byte, filename string) (model.Verdict, error) {
	ctx, span := s.tracer.Start(ctx, "document.scan")
	defer span.End()
	start := time.Now()
	defer s.metrics.Stage("scan", start)

	s.log.Debug().Str("filename", filename).Msg("scan_started")
	v, err := s.gate.Check(ctx, payload, filename)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return v, err
	}
	span.SetAttributes(attribute.Bool("scan.suspicious", v.Suspicious))
	return v, nil
}

func (s *documentService) classify(ctx context.Context, payload []byte, filename string) classifier.Result {
	ctx, span := s.tracer.Start(ctx, "document.classify")
	defer span.End()
	start := time.Now()
	defer s.metrics.Stage("classify", start)

	res := s.classifier.Classify(ctx, payload, filename)
	s.metrics.Classification(res.Status)
	span.SetAttributes(
		attribute.String("classification.status", res.Status),
		attribute.Int("classification.findings", len(res.Spans)),
	)
	return res
}

func (s *documentService) fail(span trace.Span, err error) error {
	s.metrics.Outcome(metrics.OutcomeFailed)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Error().Err(err).Msg("ingest_failed")
	return err
}

func scanStatus(v model.Verdict) string {
	if v.Clean() {
		return "CLEAN"
	}
	return "SUSPICIOUS"
}

func (s *documentService) IngestFixture(ctx context.Context, key, ownerID string) (*model.Document, error) {
	if s.fixtures == nil {
		return nil, ErrFixturesDisabled
	}
	if key == "" {
		return nil, ErrIDRequired
	}
	rc, info, err := s.fixtures.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fixture %q: %w", key, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read fixture %q: %w", key, err)
	}
	return s.Ingest(ctx, upload.NewInMemory(path.Base(key), b, info.ContentType), ownerID, "")
}

// List returns paginated documents without exposing repository types.
func (s *documentService) List(ctx context.Context, ownerID string, limit, offset int) (*DocumentListResult, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}

	raw, version, ok := s.cache.GetPage(ctx, ownerID, limit, offset)
	if ok {
		var cached DocumentListResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	res, err := s.docs.ListByOwner(ctx, ownerID, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	out := &DocumentListResult{Items: res.Items, Total: res.Total}
	if out.Items == nil {
		out.Items = []model.Document{}
	}
	if raw, err := json.Marshal(out); err == nil {
		s.cache.SetPage(ctx, ownerID, version, limit, offset, raw)
	}
	return out, nil
}

// Get returns a document by ID for its owner.
func (s *documentService) Get(ctx context.Context, id, ownerID string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	doc, err := s.docs.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

// Delete removes an owned document. Risk and share rows go with it.
func (s *documentService) Delete(ctx context.Context, id, ownerID string) error {
	if id == "" {
		return ErrIDRequired
	}
	if ownerID == "" {
		return ErrOwnerRequired
	}
	if err := s.docs.DeleteByIDAndOwner(ctx, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.cache.Invalidate(ctx, ownerID)
	s.log.Info().Str("document_id", id).Msg("document_deleted")
	return nil
}

func (s *documentService) ReadContent(doc *model.Document) []byte {
	if doc == nil {
		return []byte{}
	}
	b, err := sanitize.DecodeBinary(doc.Content)
	if err != nil {
		s.log.Warn().Err(err).Str("document_id", doc.ID).Msg("content_decode_failed")
	}
	return b
}

func (s *documentService) ListRisks(ctx context.Context, id, ownerID string) ([]model.DocumentRisk, error) {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}
	risks, err := s.docs.ListRisks(ctx, id)
	if err != nil {
		return nil, err
	}
	if risks == nil {
		risks = []model.DocumentRisk{}
	}
	return risks, nil
}

func (s *documentService) Share(ctx context.Context, id, ownerID, granteeID string) (*model.DocumentShare, error) {
	granteeID = sanitize.Text(granteeID)
	if granteeID == "" {
		return nil, ErrGranteeRequired
	}
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}
	share, err := s.shares.Create(ctx, &model.DocumentShare{
		DocumentID: id,
		GranteeID:  granteeID,
		CreatedAt:  s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("persist share: %w", err)
	}
	s.log.Info().Str("document_id", id).Str("grantee_id", granteeID).Msg("document_shared")
	return share, nil
}

func (s *documentService) ListShares(ctx context.Context, id, ownerID string) ([]model.DocumentShare, error) {
	if _, err := s.Get(ctx, id, ownerID); err != nil {
		return nil, err
	}
	shares, err := s.shares.ListByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if shares == nil {
		shares = []model.DocumentShare{}
	}
	return shares, nil
}
