package ports

import (
	"context"

	"autochart/domain/chart"
	"autochart/domain/dataset"
	"autochart/domain/filter"
)

// DashboardRepository persists dashboard configuration: chart specs, the
// active filter set and upload history. Save operations replace the stored
// list wholesale and keep its order.
type DashboardRepository interface {
	SaveCharts(ctx context.Context, charts []chart.Spec) error
	LoadCharts(ctx context.Context) ([]chart.Spec, error)

	SaveFilters(ctx context.Context, filters []filter.Condition) error
	LoadFilters(ctx context.Context) ([]filter.Condition, error)

	AppendUpload(ctx context.Context, upload dataset.UploadMetadata) error
	ListUploads(ctx context.Context) ([]dataset.UploadMetadata, error)

	// Clear removes every stored chart, filter and upload
	Clear(ctx context.Context) error
}
