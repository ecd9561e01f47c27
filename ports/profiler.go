package ports

import (
	"context"

	"autochart/domain/dataset"
	"autochart/domain/profiling"
)

// ProfilerPort infers column types and statistics for a dataset
type ProfilerPort interface {
	ProfileDataset(ctx context.Context, ds dataset.Dataset) (profiling.Profile, error)
}
