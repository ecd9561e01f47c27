package ports

import (
	"context"
	"io"

	"autochart/domain/dataset"
)

// DatasetReaderPort decodes an uploaded source into a normalized dataset.
// The file name selects the source format.
type DatasetReaderPort interface {
	Read(ctx context.Context, src io.Reader, fileName string) (dataset.Ingested, error)
}
