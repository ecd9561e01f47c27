package dashboard

import (
	"autochart/domain/chart"
	"autochart/domain/dataset"
	"autochart/domain/filter"
)

// Config is the persisted part of a dashboard. Raw rows are never part of it.
type Config struct {
	Charts  []chart.Spec             `json:"charts"`
	Filters []filter.Condition       `json:"filters"`
	Uploads []dataset.UploadMetadata `json:"uploads"`
}

// DefaultName identifies the single dashboard a process serves
const DefaultName = "default"
