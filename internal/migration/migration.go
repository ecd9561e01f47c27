package migration

import (
	"context"

	"autochart/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the dashboard configuration schema
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all migrations in order. Every statement is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createDocumentTable(ctx, db, "dashboard_charts"); err != nil {
		return errors.Wrap(err, "failed to create dashboard_charts table")
	}

	if err := r.createDocumentTable(ctx, db, "dashboard_filters"); err != nil {
		return errors.Wrap(err, "failed to create dashboard_filters table")
	}

	if err := r.createUploadsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create dashboard_uploads table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// Statements lists every DDL statement Run executes
func (r *MigrationRunner) Statements() []string {
	return []string{
		documentTableDDL("dashboard_charts"),
		documentTableDDL("dashboard_filters"),
		uploadsTableDDL,
		indexesDDL,
	}
}

func documentTableDDL(table string) string {
	return `
		CREATE TABLE IF NOT EXISTS ` + table + ` (
			dashboard VARCHAR(100) NOT NULL,
			position INTEGER NOT NULL,
			document JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (dashboard, position)
		)
	`
}

const uploadsTableDDL = `
		CREATE TABLE IF NOT EXISTS dashboard_uploads (
			id BIGSERIAL PRIMARY KEY,
			dashboard VARCHAR(100) NOT NULL,
			file_name TEXT NOT NULL,
			file_extension VARCHAR(10) NOT NULL,
			uploaded_at TIMESTAMP WITH TIME ZONE NOT NULL,
			file_size BIGINT NOT NULL DEFAULT 0,
			row_count INTEGER NOT NULL DEFAULT 0,
			column_count INTEGER NOT NULL DEFAULT 0,
			checksum CHAR(64) NOT NULL DEFAULT ''
		)
	`

const indexesDDL = `
		CREATE INDEX IF NOT EXISTS idx_dashboard_uploads_dashboard_time
			ON dashboard_uploads (dashboard, uploaded_at)
	`

func (r *MigrationRunner) createDocumentTable(ctx context.Context, db *sqlx.DB, table string) error {
	_, err := db.ExecContext(ctx, documentTableDDL(table))
	return err
}

func (r *MigrationRunner) createUploadsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, uploadsTableDDL)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, indexesDDL)
	return err
}
