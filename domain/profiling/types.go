package profiling

import (
	"time"
)

// ColumnType represents the automatically detected column type
type ColumnType string

const (
	TypeInteger ColumnType = "integer"
	TypeNumber  ColumnType = "number"
	TypeDate    ColumnType = "date"
	TypeString  ColumnType = "string"
	TypeUnknown ColumnType = "unknown"
)

// IsNumeric reports whether the type holds numbers
func (t ColumnType) IsNumeric() bool {
	return t == TypeInteger || t == TypeNumber
}

// ColumnProfile contains the inferred type and descriptive statistics of one column.
// Pointer fields are nil when the column gives no basis to compute them.
type ColumnProfile struct {
	Name         string        `json:"name"`
	Type         ColumnType    `json:"type"`
	NullCount    int           `json:"null_count"`
	EmptyCount   int           `json:"empty_count"`
	UniqueCount  int           `json:"unique_count"`
	NonNullCount int           `json:"non_null_count"`
	SampleValues []interface{} `json:"sample_values"`

	// Numeric columns
	Min                 *float64 `json:"min,omitempty"`
	Max                 *float64 `json:"max,omitempty"`
	Mean                *float64 `json:"mean,omitempty"`
	IsLikelyCategorical bool     `json:"is_likely_categorical,omitempty"`

	// Date columns
	MinDate            *time.Time `json:"min_date,omitempty"`
	MaxDate            *time.Time `json:"max_date,omitempty"`
	IsLikelyTimeSeries bool       `json:"is_likely_time_series,omitempty"`
}

// IsContinuous reports whether the column is numeric and not flagged categorical
func (p ColumnProfile) IsContinuous() bool {
	return p.Type.IsNumeric() && !p.IsLikelyCategorical
}

// Profile is the ordered profile map of a dataset
type Profile struct {
	Columns  []string                 `json:"columns"`
	Profiles map[string]ColumnProfile `json:"profiles"`
	RowCount int                      `json:"row_count"`
}

// NewProfile creates an empty profile
func NewProfile(rowCount int) Profile {
	return Profile{
		Columns:  []string{},
		Profiles: make(map[string]ColumnProfile),
		RowCount: rowCount,
	}
}

// Add appends a column profile, keeping column order
func (p *Profile) Add(cp ColumnProfile) {
	if _, exists := p.Profiles[cp.Name]; !exists {
		p.Columns = append(p.Columns, cp.Name)
	}
	p.Profiles[cp.Name] = cp
}

// Get returns the profile for a column
func (p Profile) Get(name string) (ColumnProfile, bool) {
	cp, ok := p.Profiles[name]
	return cp, ok
}

// Len returns the number of profiled columns
func (p Profile) Len() int {
	return len(p.Columns)
}

// Ordered returns the column profiles in column order
func (p Profile) Ordered() []ColumnProfile {
	out := make([]ColumnProfile, 0, len(p.Columns))
	for _, name := range p.Columns {
		out = append(out, p.Profiles[name])
	}
	return out
}

// Select returns the names of the columns matching keep, in column order
func (p Profile) Select(keep func(ColumnProfile) bool) []string {
	var names []string
	for _, name := range p.Columns {
		if keep(p.Profiles[name]) {
			names = append(names, name)
		}
	}
	return names
}

// NumericColumns returns integer and number columns
func (p Profile) NumericColumns() []string {
	return p.Select(func(cp ColumnProfile) bool { return cp.Type.IsNumeric() })
}

// ContinuousColumns returns numeric columns not flagged categorical
func (p Profile) ContinuousColumns() []string {
	return p.Select(ColumnProfile.IsContinuous)
}

// DateColumns returns date columns
func (p Profile) DateColumns() []string {
	return p.Select(func(cp ColumnProfile) bool { return cp.Type == TypeDate })
}

// CategoricalColumns returns string columns and low-cardinality numeric columns
func (p Profile) CategoricalColumns() []string {
	return p.Select(func(cp ColumnProfile) bool {
		return cp.Type == TypeString || (cp.Type.IsNumeric() && cp.IsLikelyCategorical)
	})
}

// ProfileOptions controls profiling behavior
type ProfileOptions struct {
	// TypeSampleSize caps how many non-empty values vote on the column type.
	// Zero or negative votes over every value.
	TypeSampleSize int `json:"type_sample_size"`
	// SampleValueCount is how many leading values are kept as samples.
	SampleValueCount int `json:"sample_value_count"`
}

// DefaultProfileOptions returns the defaults used by the dashboard
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		TypeSampleSize:   100,
		SampleValueCount: 5,
	}
}
