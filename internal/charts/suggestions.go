package charts

import (
	"autochart/domain/chart"
	"autochart/domain/profiling"
)

// Suggest lists the chart kinds a user could build from the profiled columns.
// Entries come in a fixed order and each names the columns it would start from.
func Suggest(profile profiling.Profile) []chart.Suggestion {
	numeric := profile.NumericColumns()
	dates := profile.DateColumns()
	categorical := profile.Select(func(cp profiling.ColumnProfile) bool {
		return cp.IsLikelyCategorical || cp.Type == profiling.TypeString
	})

	suggestions := []chart.Suggestion{}
	if len(numeric) > 0 {
		suggestions = append(suggestions, chart.Suggestion{
			Key:             "histogram",
			Type:            chart.TypeBar,
			Title:           "Histogram",
			Description:     "Distribution of a numeric variable.",
			RequiredColumns: numeric[:1],
		})
	}
	if len(categorical) > 0 {
		suggestions = append(suggestions,
			chart.Suggestion{
				Key:             "barChart",
				Type:            chart.TypeBar,
				Title:           "Bar Chart",
				Description:     "Compare values across categories.",
				RequiredColumns: categorical[:1],
			},
			chart.Suggestion{
				Key:             "pieChart",
				Type:            chart.TypePie,
				Title:           "Pie Chart",
				Description:     "Proportion of each category.",
				RequiredColumns: categorical[:1],
			},
		)
	}
	if len(numeric) >= 2 {
		suggestions = append(suggestions, chart.Suggestion{
			Key:             "scatterPlot",
			Type:            chart.TypeScatter,
			Title:           "Scatter Plot",
			Description:     "Relationship between two numeric variables.",
			RequiredColumns: numeric[:2],
		})
	}
	if len(numeric) > 0 && len(categorical) > 0 {
		suggestions = append(suggestions, chart.Suggestion{
			Key:             "groupedBarChart",
			Type:            chart.TypeBar,
			Title:           "Grouped Bar Chart",
			Description:     "Compare a numeric variable across different categories.",
			RequiredColumns: []string{categorical[0], numeric[0]},
		})
	}
	if len(dates) > 0 && len(numeric) > 0 {
		suggestions = append(suggestions, chart.Suggestion{
			Key:             "lineChart",
			Type:            chart.TypeLine,
			Title:           "Line Chart",
			Description:     "Trend of a numeric variable over time.",
			RequiredColumns: []string{dates[0], numeric[0]},
		})
	}
	return suggestions
}
