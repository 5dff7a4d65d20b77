package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id                    UUID        PRIMARY KEY,
  filename              TEXT        NOT NULL,
  content               TEXT        NOT NULL,
  mime_type             TEXT        NOT NULL,
  file_size             BIGINT      NOT NULL CHECK (file_size >= 0),
  owner_id              TEXT        NOT NULL,
  uploaded_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  last_modified_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
  risk_score            INTEGER     NOT NULL,
  status                TEXT        NOT NULL,
  classification_status TEXT        NOT NULL,
  sensitive_info        TEXT        NOT NULL
);`,
	},
	{
		Name: "create_index_documents_owner_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_owner_uploaded_at ON documents (owner_id, uploaded_at DESC, id DESC);`,
	},
	{
		Name: "create_table_documents_risk",
		SQL: `CREATE TABLE IF NOT EXISTS documents_risk (
  id          BIGSERIAL PRIMARY KEY,
  document_id UUID      NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  risk_type   TEXT,
  risk_key    TEXT,
  content     TEXT
);`,
	},
	{
		Name: "create_index_documents_risk_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_risk_document_id ON documents_risk (document_id);`,
	},
	{
		Name: "create_table_documents_share",
		SQL: `CREATE TABLE IF NOT EXISTS documents_share (
  id          BIGSERIAL   PRIMARY KEY,
  document_id UUID        NOT NULL REFERENCES documents (id) ON DELETE CASCADE,
  grantee_id  TEXT        NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_documents_share_document_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_share_document_id ON documents_share (document_id);`,
	},
	{
		Name: "create_table_audit_logs",
		SQL: `CREATE TABLE IF NOT EXISTS audit_logs (
  id           BIGSERIAL   PRIMARY KEY,
  log_type     TEXT        NOT NULL,
  details_logs JSONB       NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
}

// sentinelTable is created by the last step, so its presence means every step has committed.
const sentinelTable = "public.audit_logs"

// EnsureMigrated runs every step in one transaction unless the sentinel table already exists.
// A failing step rolls the whole schema back, so the next start retries from scratch.
func EnsureMigrated(ctx context.Context, db *sql.DB, log zerolog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With().Str("component", "database").Str("db_host", dbHost).Logger()

	log.Info().Str("event", "db_migration_check").Str("status", "starting").Send()

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists)
	if err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Str("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Send()
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info().
			Str("event", "db_migration_skip").
			Str("status", "success").
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("schema already exists, skipping migration")
		return nil
	}

	log.Info().Str("event", "db_migration_start").Str("status", "in_progress").Send()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, step := range steps {
		stepStart := time.Now()
		_, err := tx.ExecContext(ctx, step.SQL)
		if err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Str("error_message", err.Error()).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
				Send()
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Send()
	}

	if err := tx.Commit(); err != nil {
		log.Error().
			Str("event", "db_migration_failed").
			Str("status", "error").
			Str("error_message", err.Error()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Send()
		return fmt.Errorf("commit migration: %w", err)
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Send()

	return nil
}
