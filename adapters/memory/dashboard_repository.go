package memory

import (
	"context"
	"sync"

	"autochart/domain/chart"
	"autochart/domain/dataset"
	"autochart/domain/filter"
)

// DashboardRepository keeps dashboard configuration in process memory
type DashboardRepository struct {
	mu      sync.RWMutex
	charts  []chart.Spec
	filters []filter.Condition
	uploads []dataset.UploadMetadata
}

// NewDashboardRepository creates an empty repository
func NewDashboardRepository() *DashboardRepository {
	return &DashboardRepository{}
}

func (r *DashboardRepository) SaveCharts(ctx context.Context, charts []chart.Spec) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charts = append([]chart.Spec(nil), charts...)
	return nil
}

func (r *DashboardRepository) LoadCharts(ctx context.Context) ([]chart.Spec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]chart.Spec{}, r.charts...), nil
}

func (r *DashboardRepository) SaveFilters(ctx context.Context, filters []filter.Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filters = append([]filter.Condition(nil), filters...)
	return nil
}

func (r *DashboardRepository) LoadFilters(ctx context.Context) ([]filter.Condition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]filter.Condition{}, r.filters...), nil
}

func (r *DashboardRepository) AppendUpload(ctx context.Context, upload dataset.UploadMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, upload)
	return nil
}

func (r *DashboardRepository) ListUploads(ctx context.Context) ([]dataset.UploadMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]dataset.UploadMetadata{}, r.uploads...), nil
}

func (r *DashboardRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charts, r.filters, r.uploads = nil, nil, nil
	return nil
}
