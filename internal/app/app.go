// Package app assembles the ingestion pipeline from configuration. Both the HTTP server and
// the ingestctl CLI build on it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"docingest/internal/cache"
	"docingest/internal/classifier"
	"docingest/internal/config"
	"docingest/internal/database"
	"docingest/internal/database/migration"
	"docingest/internal/metrics"
	"docingest/internal/repository/postgres"
	"docingest/internal/scanner"
	"docingest/internal/service"
	"docingest/internal/storage"
)

// Pipeline holds the wired service and the resources it owns.
type Pipeline struct {
	DB       *sql.DB
	Service  service.DocumentService
	Fixtures storage.Storage

	cache *cache.Redis
}

// NewPipeline connects to postgres, runs migrations and wires every pipeline stage.
// Redis and the fixture source are optional; their absence is logged, not fatal.
func NewPipeline(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	ingestMetrics, err := metrics.NewIngest(reg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	listCache, err := cache.NewRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn().Err(err).Str("event", "redis_unavailable").Msg("page cache disabled")
		listCache = nil
	}

	fixtures, err := OpenFixtures(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Str("event", "fixtures_unavailable").Msg("fixture ingestion disabled")
		fixtures = nil
	}

	svc := service.NewDocumentService(service.Deps{
		Documents:  postgres.NewDocumentPostgres(db),
		Shares:     postgres.NewSharePostgres(db),
		Gate:       scanner.NewGate(NewScanner(cfg.Scanner, log), time.Duration(cfg.Scanner.CacheTTLSec)*time.Second, log),
		Classifier: classifier.NewAdapter(classifier.NewClient(cfg.Classifier.URL, cfg.Classifier.Path), cfg.Classifier.Timeout(), log),
		Fixtures:   fixtures,
		Cache:      listCache,
		Metrics:    ingestMetrics,
		Log:        log,
	})

	return &Pipeline{DB: db, Service: svc, Fixtures: fixtures, cache: listCache}, nil
}

// Close releases the database and cache connections.
func (p *Pipeline) Close() error {
	cerr := p.cache.Close()
	if err := p.DB.Close(); err != nil {
		return err
	}
	return cerr
}

// NewScanner returns the remote scanner when SCANNER_URL is set, otherwise HashOnly.
func NewScanner(cfg config.ScannerConfig, log zerolog.Logger) scanner.Scanner {
	if cfg.URL == "" {
		log.Warn().Str("event", "scanner_hash_only").Msg("SCANNER_URL not set; verdicts carry only the content hash")
		return scanner.HashOnly{}
	}
	return scanner.NewRemote(cfg.URL, cfg.Path, cfg.Timeout())
}

// OpenFixtures picks the fixture directory when configured, then the MinIO bucket.
// It returns nil, nil when neither is configured.
func OpenFixtures(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	switch {
	case cfg.Fixture.Dir != "":
		return storage.NewDir(cfg.Fixture.Dir)
	case cfg.MinIO.Endpoint != "":
		return storage.NewMinIO(ctx, cfg.MinIO)
	default:
		return nil, nil
	}
}
