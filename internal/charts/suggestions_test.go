package charts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"autochart/domain/chart"
	"autochart/domain/dataset"
	"autochart/domain/profiling"
)

func keys(suggestions []chart.Suggestion) []string {
	out := make([]string, len(suggestions))
	for i, s := range suggestions {
		out[i] = s.Key
	}
	return out
}

func TestSuggestFullProfile(t *testing.T) {
	p := profiling.NewProfile(10)
	p.Add(profiling.ColumnProfile{Name: "region", Type: profiling.TypeString})
	p.Add(profiling.ColumnProfile{Name: "revenue", Type: profiling.TypeNumber})
	p.Add(profiling.ColumnProfile{Name: "units", Type: profiling.TypeInteger})
	p.Add(profiling.ColumnProfile{Name: "day", Type: profiling.TypeDate})

	suggestions := Suggest(p)
	assert.Equal(t, []string{"histogram", "barChart", "pieChart", "scatterPlot", "groupedBarChart", "lineChart"}, keys(suggestions))
	assert.Equal(t, []string{"revenue", "units"}, suggestions[3].RequiredColumns)
	assert.Equal(t, []string{"region", "revenue"}, suggestions[4].RequiredColumns)
	assert.Equal(t, []string{"day", "revenue"}, suggestions[5].RequiredColumns)
}

func TestSuggestStringsOnly(t *testing.T) {
	p := profiling.NewProfile(3)
	p.Add(profiling.ColumnProfile{Name: "name", Type: profiling.TypeString})

	assert.Equal(t, []string{"barChart", "pieChart"}, keys(Suggest(p)))
	assert.Empty(t, Suggest(profiling.NewProfile(0)))
}

func TestTrending(t *testing.T) {
	day1 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 5, 3, 18, 0, 0, 0, time.UTC)
	uploads := []dataset.UploadMetadata{
		{FileName: "a.csv", FileExtension: "csv", UploadedAt: day2},
		{FileName: "b.xlsx", FileExtension: "xlsx", UploadedAt: day1},
		{FileName: "c.csv", FileExtension: "csv", UploadedAt: day1},
	}

	specs := Trending(uploads)
	assert.Len(t, specs, 2)

	assert.Equal(t, FileTypeChartID, specs[0].ID)
	assert.Equal(t, []string{"csv", "xlsx"}, specs[0].Labels)
	assert.Equal(t, []float64{2, 1}, specs[0].Series[0].Data)

	assert.Equal(t, UploadFrequencyChartID, specs[1].ID)
	assert.Equal(t, []string{"2024-05-01", "2024-05-03"}, specs[1].Labels)
	assert.Equal(t, []float64{2, 1}, specs[1].Series[0].Data)
}

func TestTrendingWithoutUploads(t *testing.T) {
	specs := Trending(nil)
	assert.Len(t, specs, 2)
	assert.Empty(t, specs[0].Labels)
	assert.Empty(t, specs[1].Labels)
}
