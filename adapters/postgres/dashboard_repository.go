package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"autochart/domain/chart"
	"autochart/domain/dashboard"
	"autochart/domain/dataset"
	"autochart/domain/filter"
)

// DashboardRepository stores dashboard configuration in Postgres. Chart specs
// and filter conditions are kept as JSONB documents; the position column
// preserves list order.
type DashboardRepository struct {
	db   *sqlx.DB
	name string
}

// NewDashboardRepository creates a repository scoped to one dashboard name
func NewDashboardRepository(db *sqlx.DB, name string) *DashboardRepository {
	if name == "" {
		name = dashboard.DefaultName
	}
	return &DashboardRepository{db: db, name: name}
}

type documentRow struct {
	Position int    `db:"position"`
	Document []byte `db:"document"`
}

type uploadRow struct {
	FileName      string    `db:"file_name"`
	FileExtension string    `db:"file_extension"`
	UploadedAt    time.Time `db:"uploaded_at"`
	FileSize      int64     `db:"file_size"`
	RowCount      int       `db:"row_count"`
	ColumnCount   int       `db:"column_count"`
	Checksum      string    `db:"checksum"`
}

// SaveCharts replaces the stored chart list
func (r *DashboardRepository) SaveCharts(ctx context.Context, charts []chart.Spec) error {
	docs := make([][]byte, len(charts))
	for i, c := range charts {
		doc, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal chart %s: %w", c.ID, err)
		}
		docs[i] = doc
	}
	if err := r.replaceDocuments(ctx, "dashboard_charts", docs); err != nil {
		return fmt.Errorf("failed to save charts: %w", err)
	}
	return nil
}

// LoadCharts returns stored charts in saved order
func (r *DashboardRepository) LoadCharts(ctx context.Context) ([]chart.Spec, error) {
	rows, err := r.loadDocuments(ctx, "dashboard_charts")
	if err != nil {
		return nil, fmt.Errorf("failed to load charts: %w", err)
	}
	charts := make([]chart.Spec, 0, len(rows))
	for _, row := range rows {
		var c chart.Spec
		if err := json.Unmarshal(row.Document, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chart at position %d: %w", row.Position, err)
		}
		charts = append(charts, c)
	}
	return charts, nil
}

// SaveFilters replaces the stored filter set
func (r *DashboardRepository) SaveFilters(ctx context.Context, filters []filter.Condition) error {
	docs := make([][]byte, len(filters))
	for i, f := range filters {
		doc, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to marshal filter on %s: %w", f.Column, err)
		}
		docs[i] = doc
	}
	if err := r.replaceDocuments(ctx, "dashboard_filters", docs); err != nil {
		return fmt.Errorf("failed to save filters: %w", err)
	}
	return nil
}

// LoadFilters returns stored filters in saved order
func (r *DashboardRepository) LoadFilters(ctx context.Context) ([]filter.Condition, error) {
	rows, err := r.loadDocuments(ctx, "dashboard_filters")
	if err != nil {
		return nil, fmt.Errorf("failed to load filters: %w", err)
	}
	filters := make([]filter.Condition, 0, len(rows))
	for _, row := range rows {
		var f filter.Condition
		if err := json.Unmarshal(row.Document, &f); err != nil {
			return nil, fmt.Errorf("failed to unmarshal filter at position %d: %w", row.Position, err)
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// AppendUpload records one upload
func (r *DashboardRepository) AppendUpload(ctx context.Context, upload dataset.UploadMetadata) error {
	query := `
		INSERT INTO dashboard_uploads (dashboard, file_name, file_extension, uploaded_at, file_size, row_count, column_count, checksum)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		r.name,
		upload.FileName,
		upload.FileExtension,
		upload.UploadedAt,
		upload.FileSize,
		upload.RowCount,
		upload.ColumnCount,
		upload.Checksum,
	)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// ListUploads returns upload history, oldest first
func (r *DashboardRepository) ListUploads(ctx context.Context) ([]dataset.UploadMetadata, error) {
	query := `
		SELECT file_name, file_extension, uploaded_at, file_size, row_count, column_count, TRIM(checksum) AS checksum
		FROM dashboard_uploads
		WHERE dashboard = $1
		ORDER BY uploaded_at, id`

	var rows []uploadRow
	if err := r.db.SelectContext(ctx, &rows, query, r.name); err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	uploads := make([]dataset.UploadMetadata, len(rows))
	for i, row := range rows {
		uploads[i] = dataset.UploadMetadata(row)
	}
	return uploads, nil
}

// Clear removes all configuration of this dashboard
func (r *DashboardRepository) Clear(ctx context.Context) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"dashboard_charts", "dashboard_filters", "dashboard_uploads"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE dashboard = $1`, r.name); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

// replaceDocuments swaps the document list of table inside one transaction.
// table is always one of the package's own table names.
func (r *DashboardRepository) replaceDocuments(ctx context.Context, table string, docs [][]byte) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE dashboard = $1`, r.name); err != nil {
		return err
	}

	insert := `
		INSERT INTO ` + table + ` (dashboard, position, document, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (dashboard, position) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at`
	for i, doc := range docs {
		if _, err := tx.ExecContext(ctx, insert, r.name, i, doc); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *DashboardRepository) loadDocuments(ctx context.Context, table string) ([]documentRow, error) {
	query := `SELECT position, document FROM ` + table + ` WHERE dashboard = $1 ORDER BY position`
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, r.name); err != nil {
		return nil, err
	}
	return rows, nil
}
