// Package summary derives dataset-level indicators and narrative insights from a profile.
package summary

import (
	"fmt"
	"math"
	"strconv"

	"autochart/domain/dataset"
	"autochart/domain/profiling"
)

const (
	largeDatasetRows = 1000
	highQuality      = 90
	maxAutoInsights  = 3
)

// Summary gathers the headline indicators of a dataset
type Summary struct {
	Records          int      `json:"records"`
	Columns          int      `json:"columns"`
	NumericColumns   int      `json:"numeric_columns"`
	CategoryColumns  int      `json:"category_columns"`
	DataPoints       int      `json:"data_points"`
	Completeness     int      `json:"completeness"`
	DataQuality      int      `json:"data_quality"`
	PerformanceScore int      `json:"performance_score"`
	Insights         []string `json:"insights"`
}

// Insight is a one-sentence observation about a column
type Insight struct {
	Column  string `json:"column"`
	Insight string `json:"insight"`
}

// Summarize computes the summary of ds from its profile
func Summarize(ds dataset.Dataset, profile profiling.Profile) Summary {
	s := Summary{
		Records:  ds.Len(),
		Columns:  profile.Len(),
		Insights: []string{},
	}
	for _, cp := range profile.Ordered() {
		switch {
		case cp.Type.IsNumeric():
			s.NumericColumns++
		case cp.Type == profiling.TypeString:
			s.CategoryColumns++
		}
	}
	s.DataPoints = s.Records * s.Columns

	if s.DataPoints > 0 {
		s.Completeness = completeness(profile, s.Records)
		s.DataQuality = dataQuality(profile, s.Records)
		s.PerformanceScore = round(float64(s.Completeness+s.DataQuality) / 2)
	}
	s.Insights = narrative(s)
	return s
}

// completeness is the percentage of cells that are not null
func completeness(profile profiling.Profile, records int) int {
	cells := float64(profile.Len() * records)
	nulls := 0
	for _, cp := range profile.Ordered() {
		nulls += cp.NullCount
	}
	return round((cells - float64(nulls)) / cells * 100)
}

// dataQuality averages column uniqueness with the share of non-empty cells
func dataQuality(profile profiling.Profile, records int) int {
	uniqueness := 0.0
	empties := 0
	for _, cp := range profile.Ordered() {
		uniqueness += float64(cp.UniqueCount) / float64(records)
		empties += cp.EmptyCount
	}
	uniqueness /= float64(profile.Len())
	nonEmpty := 1 - float64(empties)/float64(records*profile.Len())
	return round((uniqueness + nonEmpty) / 2 * 100)
}

func narrative(s Summary) []string {
	insights := make([]string, 0, 3)
	if s.Records > largeDatasetRows {
		insights = append(insights, "The dataset is large, providing a solid basis for analysis.")
	} else {
		insights = append(insights, "The dataset is small. More data would improve analysis accuracy.")
	}
	if s.DataQuality > highQuality {
		insights = append(insights, "Data quality is high, with good completeness and uniqueness.")
	} else {
		insights = append(insights, "There is room for improving data quality by addressing missing or inconsistent values.")
	}
	if s.NumericColumns > s.CategoryColumns {
		insights = append(insights, "The data is rich in numerical features, ideal for quantitative analysis.")
	} else {
		insights = append(insights, "The data is diverse with a good mix of categorical and numerical data.")
	}
	return insights
}

// AutoInsights returns up to three range sentences for numeric and date columns
func AutoInsights(profile profiling.Profile) []Insight {
	insights := []Insight{}
	for _, cp := range profile.Ordered() {
		if len(insights) == maxAutoInsights {
			break
		}
		switch {
		case cp.Type.IsNumeric() && cp.Min != nil && cp.Max != nil && cp.Mean != nil:
			insights = append(insights, Insight{
				Column: cp.Name,
				Insight: fmt.Sprintf("The values range from %s to %s, with an average of %.2f.",
					formatNumber(*cp.Min), formatNumber(*cp.Max), *cp.Mean),
			})
		case cp.Type == profiling.TypeDate && cp.MinDate != nil && cp.MaxDate != nil:
			insights = append(insights, Insight{
				Column: cp.Name,
				Insight: fmt.Sprintf("The dates range from %s to %s.",
					cp.MinDate.Format("1/2/2006"), cp.MaxDate.Format("1/2/2006")),
			})
		}
	}
	return insights
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func round(f float64) int {
	return int(math.Round(f))
}
