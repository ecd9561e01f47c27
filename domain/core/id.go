package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ChartID    ID
	SnapshotID ID
)

func (id ChartID) String() string    { return ID(id).String() }
func (id SnapshotID) String() string { return ID(id).String() }

// NewChartID returns a dashboard chart identifier. The prefix keeps ids
// recognisable in exported configs ("chart-<uuid>").
func NewChartID() ChartID {
	return ChartID("chart-" + NewID().String())
}

// NewSnapshotID returns an identifier for an immutable dataset snapshot
func NewSnapshotID() SnapshotID {
	return SnapshotID(NewID())
}

// ParseChartID parses a string into ChartID
func ParseChartID(s string) (ChartID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("chart ID cannot be empty")
	}
	return ChartID(s), nil
}
