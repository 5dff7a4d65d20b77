package service

import (
	"context"
	"time"

	cacheMocks "docingest/internal/cache/mocks"
	"docingest/internal/classifier"
	classifierMocks "docingest/internal/classifier/mocks"
	"docingest/internal/logger"
	"docingest/internal/model"
	repoMocks "docingest/internal/repository/mocks"
	"docingest/internal/scanner"
	scannerMocks "docingest/internal/scanner/mocks"
	"docingest/internal/storage"

	"github.com/rs/zerolog"
)

var fixedNow = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fixedIDs struct{ id string }

func (g fixedIDs) New() string { return g.id }

type harness struct {
	docs       *repoMocks.MockDocumentRepository
	shares     *repoMocks.MockShareRepository
	scanner    *scannerMocks.MockScanner
	classifier *classifierMocks.MockClassifier
	cache      *cacheMocks.MockListCache
	fixtures   storage.Storage
	log        zerolog.Logger
}

func newHarness() *harness {
	return &harness{
		docs:       new(repoMocks.MockDocumentRepository),
		shares:     new(repoMocks.MockShareRepository),
		scanner:    new(scannerMocks.MockScanner),
		classifier: new(classifierMocks.MockClassifier),
		cache:      new(cacheMocks.MockListCache),
		log:        logger.Nop(),
	}
}

func (h *harness) service() DocumentService {
	return NewDocumentService(Deps{
		Documents:  h.docs,
		Shares:     h.shares,
		Gate:       scanner.NewGate(h.scanner, 0, h.log),
		Classifier: classifier.NewAdapter(h.classifier, time.Second, h.log),
		Fixtures:   h.fixtures,
		Cache:      h.cache,
		Clock:      fixedClock{fixedNow},
		IDs:        fixedIDs{"doc-1"},
		Log:        h.log,
	})
}

// passthrough makes the repository mock return the document it was given.
func passthrough(_ context.Context, doc *model.Document, _ []model.DocumentRisk, _ *model.AuditLog) *model.Document {
	return doc
}
