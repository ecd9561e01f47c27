package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrChartNotFound   = fmt.Errorf("%w: chart", ErrNotFound)
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)

	// Ingestion errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoData            = errors.New("no data found")
	ErrNoHeaders         = errors.New("no valid column headers found")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")

	// Chart building errors
	ErrMissingAxis      = errors.New("chart axis column is required")
	ErrUnsupportedChart = errors.New("unsupported chart type")
	ErrInvalidRequest   = errors.New("invalid request")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRequest, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrMissingAxis) ||
		errors.Is(err, ErrUnsupportedChart)
}

func IsIngestionError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrNoHeaders) ||
		errors.Is(err, ErrFileTooLarge)
}
