package core

import (
	"errors"
	"strings"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	if !ID("").IsEmpty() {
		t.Error("Expected empty ID to be empty")
	}
	if ID("not-empty").IsEmpty() {
		t.Error("Expected non-empty ID to not be empty")
	}
}

func TestNewChartIDPrefix(t *testing.T) {
	id := NewChartID()
	if !strings.HasPrefix(id.String(), "chart-") {
		t.Errorf("Expected chart- prefix, got %s", id)
	}
	if NewChartID() == id {
		t.Error("Expected distinct chart IDs")
	}
}

// TestParseChartID tests chart ID parsing
func TestParseChartID(t *testing.T) {
	tests := []struct {
		input    string
		expected ChartID
		hasError bool
	}{
		{"chart-1", ChartID("chart-1"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseChartID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsNotFoundError(NewNotFoundError("chart", "x")) {
		t.Error("Expected not found error to be detected")
	}
	if !IsNotFoundError(ErrChartNotFound) {
		t.Error("Expected ErrChartNotFound to wrap ErrNotFound")
	}
	if !IsValidationError(NewValidationError("column", "required")) {
		t.Error("Expected validation error to be detected")
	}
	if !IsIngestionError(errors.Join(ErrNoData)) {
		t.Error("Expected ingestion error to be detected")
	}
	if IsIngestionError(ErrMissingAxis) {
		t.Error("Axis error is not an ingestion error")
	}
}
