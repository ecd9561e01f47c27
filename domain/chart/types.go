package chart

import (
	"autochart/domain/aggregation"
)

// Type is the rendering kind of a chart
type Type string

const (
	TypeBar      Type = "bar"
	TypeLine     Type = "line"
	TypePie      Type = "pie"
	TypeDoughnut Type = "doughnut"
	TypeScatter  Type = "scatter"
	TypeRadar    Type = "radar"
)

// Valid reports whether t is a known chart type
func (t Type) Valid() bool {
	switch t {
	case TypeBar, TypeLine, TypePie, TypeDoughnut, TypeScatter, TypeRadar:
		return true
	}
	return false
}

// Point is one x/y pair of a scatter series
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is one data series. Category charts fill Data, scatter charts fill Points.
type Series struct {
	Label  string    `json:"label"`
	Data   []float64 `json:"data,omitempty"`
	Points []Point   `json:"points,omitempty"`
}

// Spec is a fully built chart, ready for a renderer. It is not mutated once built.
type Spec struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Type        Type                   `json:"type"`
	Labels      []string               `json:"labels"`
	Series      []Series               `json:"series"`
	XAxisColumn string                 `json:"xAxisColumn,omitempty"`
	YAxisColumn string                 `json:"yAxisColumn,omitempty"`
	Meta        map[string]interface{} `json:"meta,omitempty"`
}

// PointCount returns the number of data points across all series
func (s Spec) PointCount() int {
	n := 0
	for _, series := range s.Series {
		n += len(series.Data) + len(series.Points)
	}
	return n
}

// IsEmpty reports whether the chart has nothing to draw
func (s Spec) IsEmpty() bool {
	return s.PointCount() == 0
}

// Suggestion describes a chart kind worth offering for a profiled dataset
type Suggestion struct {
	Key             string   `json:"key"`
	Type            Type     `json:"type"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	RequiredColumns []string `json:"requiredColumns"`
}

// BuildRequest is a user-driven chart definition
type BuildRequest struct {
	Type        Type                 `json:"type"`
	Title       string               `json:"title,omitempty"`
	XAxisColumn string               `json:"xAxisColumn"`
	YAxisColumn string               `json:"yAxisColumn,omitempty"`
	Aggregation aggregation.Function `json:"aggregation,omitempty"`
}
