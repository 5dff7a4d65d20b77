package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docingest/internal/classifier"
	"docingest/internal/model"
	"docingest/internal/sanitize"
	"docingest/internal/scanner"
	"docingest/internal/storage"
	storageMocks "docingest/internal/storage/mocks"
	"docingest/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIngest_CleanTextFile(t *testing.T) {
	h := newHarness()
	payload := []byte("meeting notes\nnothing sensitive here\n")
	hash := scanner.ContentHash(payload)

	h.scanner.On("Scan", mock.Anything, payload, "notes.txt").Return(model.Verdict{}, nil)
	h.classifier.On("Classify", mock.Anything, payload, "notes.txt").Return([]model.Span{}, nil)

	var gotRisks []model.DocumentRisk
	var gotAudit *model.AuditLog
	h.docs.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			gotRisks = args.Get(2).([]model.DocumentRisk)
			gotAudit = args.Get(3).(*model.AuditLog)
		}).
		Return(passthrough, nil)
	h.cache.On("Invalidate", mock.Anything, "alice").Return()

	doc, err := h.service().Ingest(context.Background(), upload.NewInMemory("notes.txt", payload, ""), "alice", "")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Equal(t, sanitize.OctetStream, doc.MimeType)
	assert.Equal(t, model.StatusProcessing, doc.Status)
	assert.Equal(t, int64(len(payload)), doc.FileSize)
	assert.Equal(t, "alice", doc.OwnerID)
	assert.Equal(t, scanner.RiskScoreBaseline, doc.RiskScore)
	assert.Equal(t, model.ClassificationNone, doc.ClassificationStatus)
	assert.Equal(t, fixedNow, doc.UploadedAt)
	assert.Equal(t, fixedNow, doc.LastModifiedAt)
	assert.True(t, strings.HasSuffix(doc.SensitiveInfoAnnotation, "MALWARE_SCAN: CLEAN [Hash: "+hash+"]"))
	assert.NotContains(t, doc.SensitiveInfoAnnotation, "Detected:")

	decoded, err := sanitize.DecodeBinary(doc.Content)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	assert.Empty(t, gotRisks)
	require.NotNil(t, gotAudit)
	assert.Equal(t, AuditDocumentIngested, gotAudit.LogType)
	assert.Equal(t, "doc-1", gotAudit.Details["document_id"])
	assert.Equal(t, hash, gotAudit.Details["file_hash"])
	assert.Equal(t, "CLEAN", gotAudit.Details["scan_status"])

	h.cache.AssertExpectations(t)
	h.docs.AssertExpectations(t)
}

func TestIngest_ThreatRejected(t *testing.T) {
	h := newHarness()
	payload := []byte("X5O!P%@AP")
	threats := []model.ThreatInfo{{Type: "EICAR", Description: "test signature", Severity: "HIGH"}}
	h.scanner.On("Scan", mock.Anything, payload, "bad.pdf").
		Return(model.Verdict{ThreatDetected: true, Threats: threats}, nil)

	doc, err := h.service().Ingest(context.Background(), upload.NewInMemory("bad.pdf", payload, ""), "alice", "")

	assert.Nil(t, doc)
	var rejection *scanner.RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, threats, rejection.Threats)
	h.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
	h.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	h.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestIngest_SuspiciousAccepted(t *testing.T) {
	h := newHarness()
	payload := []byte("%PDF-1.7 /JavaScript")
	warnings := []model.ThreatInfo{{Type: "PDF_JS", Description: "embedded javascript"}}
	h.scanner.On("Scan", mock.Anything, payload, "form.pdf").
		Return(model.Verdict{Suspicious: true, Warnings: warnings, ContentHash: "abc"}, nil)
	h.classifier.On("Classify", mock.Anything, payload, "form.pdf").Return(nil, nil)
	h.docs.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(passthrough, nil)
	h.cache.On("Invalidate", mock.Anything, "alice").Return()

	doc, err := h.service().Ingest(context.Background(), upload.NewInMemory("form.pdf", payload, ""), "alice", "")
	require.NoError(t, err)

	assert.Equal(t, model.StatusProcessing, doc.Status)
	assert.Equal(t, scanner.RiskScoreSuspicious, doc.RiskScore)
	assert.Greater(t, doc.RiskScore, scanner.RiskScoreBaseline)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.Contains(t, doc.SensitiveInfoAnnotation, "PDF_JS=embedded javascript")
	assert.Contains(t, doc.SensitiveInfoAnnotation, "MALWARE_SCAN: SUSPICIOUS")
	assert.True(t, strings.HasSuffix(doc.SensitiveInfoAnnotation, "[Hash: abc]"))
}

func TestIngest_ClassifierFailureDegrades(t *testing.T) {
	for name, classifyErr := range map[string]error{
		"malformed response": classifier.ErrMalformedResponse,
		"transport error":    errors.New("connection refused"),
		"timeout":            context.DeadlineExceeded,
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			payload := []byte("ssn 123-45-6789")
			h.scanner.On("Scan", mock.Anything, payload, "hr.doc").Return(model.Verdict{}, nil)
			h.classifier.On("Classify", mock.Anything, payload, "hr.doc").Return(nil, classifyErr)
			h.docs.On("Create", mock.Anything, mock.Anything, []model.DocumentRisk{}, mock.Anything).Return(passthrough, nil)
			h.cache.On("Invalidate", mock.Anything, "alice").Return()

			doc, err := h.service().Ingest(context.Background(), upload.NewInMemory("hr.doc", payload, ""), "alice", "")
			require.NoError(t, err)

			assert.NotContains(t, doc.SensitiveInfoAnnotation, "Detected:")
			assert.Equal(t, model.ClassificationDegraded, doc.ClassificationStatus)
			assert.Equal(t, "application/msword", doc.MimeType)
		})
	}
}

func TestIngest_FindingsBecomeRisks(t *testing.T) {
	h := newHarness()
	payload := []byte("contact: jane@example.com")
	spans := []model.Span{
		{Type: "EMAIL", Value: "jane@example.com", Start: 9, End: 25},
	}
	h.scanner.On("Scan", mock.Anything, payload, "contact.txt").Return(model.Verdict{}, nil)
	h.classifier.On("Classify", mock.Anything, payload, "contact.txt").Return(spans, nil)

	var gotRisks []model.DocumentRisk
	h.docs.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { gotRisks = args.Get(2).([]model.DocumentRisk) }).
		Return(passthrough, nil)
	h.cache.On("Invalidate", mock.Anything, "alice").Return()

	doc, err := h.service().Ingest(context.Background(),
		upload.NewInMemory("contact.txt", payload, "text/plain"), "alice", "  internal only ")
	require.NoError(t, err)

	assert.Equal(t, "text/plain", doc.MimeType)
	assert.Equal(t, model.ClassificationFound, doc.ClassificationStatus)
	assert.True(t, strings.HasPrefix(doc.SensitiveInfoAnnotation, "internal only; Detected: EMAIL=jane@example.com; MALWARE_SCAN: CLEAN"))
	require.Len(t, gotRisks, 1)
	assert.Equal(t, model.DocumentRisk{DocumentID: "doc-1", RiskType: "EMAIL", RiskKey: "jane@example.com", Content: "9-25"}, gotRisks[0])
}

func TestIngest_SanitizesMetadata(t *testing.T) {
	h := newHarness()
	payload := []byte{0x00, 0xff, 0x80}
	name := "re\x00port\x1f\u0085.pdf"
	h.scanner.On("Scan", mock.Anything, payload, name).Return(model.Verdict{}, nil)
	h.classifier.On("Classify", mock.Anything, payload, name).Return(nil, nil)
	h.docs.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(passthrough, nil)
	h.cache.On("Invalidate", mock.Anything, "alice").Return()

	doc, err := h.service().Ingest(context.Background(),
		upload.NewInMemory(name, payload, "\x01\x02"), "alice", "note\x07")
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.True(t, strings.HasPrefix(doc.SensitiveInfoAnnotation, "note; "))
	assert.Equal(t, int64(3), doc.FileSize)
	for _, field := range []string{doc.Filename, doc.MimeType, doc.Status, doc.SensitiveInfoAnnotation} {
		assert.Equal(t, sanitize.Text(field), field)
	}
}

func TestIngest_ScannerUnavailable(t *testing.T) {
	h := newHarness()
	payload := []byte("data")
	h.scanner.On("Scan", mock.Anything, payload, "a.txt").Return(model.Verdict{}, errors.New("dial tcp: refused"))

	_, err := h.service().Ingest(context.Background(), upload.NewInMemory("a.txt", payload, ""), "alice", "")

	assert.ErrorIs(t, err, scanner.ErrUnavailable)
	h.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
	h.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIngest_PersistFailure(t *testing.T) {
	h := newHarness()
	payload := []byte("data")
	h.scanner.On("Scan", mock.Anything, payload, "a.txt").Return(model.Verdict{}, nil)
	h.classifier.On("Classify", mock.Anything, payload, "a.txt").Return(nil, nil)
	h.docs.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))

	doc, err := h.service().Ingest(context.Background(), upload.NewInMemory("a.txt", payload, ""), "alice", "")

	assert.Nil(t, doc)
	assert.EqualError(t, err, "persist document: db fail")
	h.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

type brokenUpload struct{ *upload.InMemory }

func (brokenUpload) Bytes() ([]byte, error) { return nil, errors.New("unexpected EOF") }

func TestIngest_Validation(t *testing.T) {
	h := newHarness()
	svc := h.service()
	ctx := context.Background()

	_, err := svc.Ingest(ctx, nil, "alice", "")
	assert.ErrorIs(t, err, ErrPayloadRequired)

	_, err = svc.Ingest(ctx, upload.NewInMemory("a.txt", []byte("x"), ""), "", "")
	assert.ErrorIs(t, err, ErrOwnerRequired)

	_, err = svc.Ingest(ctx, brokenUpload{upload.NewInMemory("a.txt", nil, "")}, "alice", "")
	assert.EqualError(t, err, "read upload: unexpected EOF")

	h.scanner.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything, mock.Anything)
}

func TestIngestFixture(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "contracts"), 0o755))
	payload := []byte("%PDF-1.4 fixture")
	require.NoError(t, os.WriteFile(filepath.Join(root, "contracts", "lease.pdf"), payload, 0o644))
	fixtures, err := storage.NewDir(root)
	require.NoError(t, err)

	t.Run("runs the fixture through the pipeline", func(t *testing.T) {
		h := newHarness()
		h.fixtures = fixtures
		h.scanner.On("Scan", mock.Anything, payload, "lease.pdf").Return(model.Verdict{}, nil)
		h.classifier.On("Classify", mock.Anything, payload, "lease.pdf").Return(nil, nil)
		h.docs.On("Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(passthrough, nil)
		h.cache.On("Invalidate", mock.Anything, "loader").Return()

		doc, err := h.service().IngestFixture(context.Background(), "contracts/lease.pdf", "loader")
		require.NoError(t, err)
		assert.Equal(t, "lease.pdf", doc.Filename)
		assert.Equal(t, "application/pdf", doc.MimeType)
		assert.Equal(t, int64(len(payload)), doc.FileSize)
	})

	t.Run("missing fixture", func(t *testing.T) {
		h := newHarness()
		h.fixtures = fixtures
		_, err := h.service().IngestFixture(context.Background(), "contracts/absent.pdf", "loader")
		assert.ErrorIs(t, err, storage.ErrObjectNotFound)
	})

	t.Run("fixture source failure", func(t *testing.T) {
		src := new(storageMocks.MockStorage)
		src.On("Get", mock.Anything, "contracts/lease.pdf").Return(nil, storage.ObjectInfo{}, errors.New("bucket offline"))
		h := newHarness()
		h.fixtures = src

		_, err := h.service().IngestFixture(context.Background(), "contracts/lease.pdf", "loader")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `fixture "contracts/lease.pdf": bucket offline`)
		h.scanner.AssertNotCalled(t, "Scan", mock.Anything, mock.Anything, mock.Anything)
		src.AssertExpectations(t)
	})

	t.Run("no fixture source", func(t *testing.T) {
		_, err := newHarness().service().IngestFixture(context.Background(), "a.pdf", "loader")
		assert.ErrorIs(t, err, ErrFixturesDisabled)
	})

	t.Run("empty key", func(t *testing.T) {
		h := newHarness()
		h.fixtures = fixtures
		_, err := h.service().IngestFixture(context.Background(), "", "loader")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}
