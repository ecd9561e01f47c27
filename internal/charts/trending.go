package charts

import (
	"sort"

	"autochart/domain/chart"
	"autochart/domain/dataset"
)

const (
	FileTypeChartID        = "fileTypeDistribution"
	UploadFrequencyChartID = "uploadFrequencyOverTime"
)

// Trending builds the upload history charts: a pie of file types and a line of
// uploads per day.
func Trending(uploads []dataset.UploadMetadata) []chart.Spec {
	var order []string
	byType := make(map[string]float64)
	byDay := make(map[string]float64)

	for _, u := range uploads {
		if _, seen := byType[u.FileExtension]; !seen {
			order = append(order, u.FileExtension)
		}
		byType[u.FileExtension]++
		byDay[u.UploadedAt.UTC().Format("2006-01-02")]++
	}

	typeCounts := make([]float64, len(order))
	for i, ext := range order {
		typeCounts[i] = byType[ext]
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)
	dayCounts := make([]float64, len(days))
	for i, d := range days {
		dayCounts[i] = byDay[d]
	}

	if order == nil {
		order = []string{}
	}
	return []chart.Spec{
		{
			ID:     FileTypeChartID,
			Title:  "File Type Distribution",
			Type:   chart.TypePie,
			Labels: order,
			Series: []chart.Series{{Label: "Files", Data: typeCounts}},
		},
		{
			ID:          UploadFrequencyChartID,
			Title:       "Upload Frequency Over Time",
			Type:        chart.TypeLine,
			Labels:      days,
			Series:      []chart.Series{{Label: "Number of Uploads", Data: dayCounts}},
			XAxisColumn: "Date",
			YAxisColumn: "Uploads",
		},
	}
}
