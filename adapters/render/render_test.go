package render

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochart/domain/chart"
	"autochart/domain/core"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRenderChartTypes(t *testing.T) {
	r := NewRenderer(DefaultOptions())

	specs := []chart.Spec{
		{ID: "bar", Title: "Amount by Region", Type: chart.TypeBar, Labels: []string{"north", "south"},
			Series: []chart.Series{{Label: "Sum", Data: []float64{23, 7}}}},
		{ID: "grouped", Type: chart.TypeBar, Labels: []string{"a", "b"},
			Series: []chart.Series{{Label: "x", Data: []float64{1, 2}}, {Label: "y", Data: []float64{3, 4}}}},
		{ID: "pie", Type: chart.TypePie, Labels: []string{"a", "b", "c"},
			Series: []chart.Series{{Label: "Count", Data: []float64{3, 2, 1}}}},
		{ID: "line", Type: chart.TypeLine, Labels: []string{"Jan 2024", "Feb 2024", "Mar 2024"},
			Series: []chart.Series{{Label: "Records", Data: []float64{4, 9, 2}}}},
		{ID: "scatter", Type: chart.TypeScatter, XAxisColumn: "price", YAxisColumn: "qty",
			Series: []chart.Series{{Label: "qty vs price", Points: []chart.Point{{X: 1, Y: 2}, {X: 2, Y: 3}, {X: 4, Y: 1}}}}},
	}

	for _, spec := range specs {
		t.Run(spec.ID, func(t *testing.T) {
			img, err := r.Render(spec, FormatPNG)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(img, pngMagic))
		})
	}
}

func TestRenderSVG(t *testing.T) {
	spec := chart.Spec{ID: "bar", Type: chart.TypeBar, Labels: []string{"a"},
		Series: []chart.Series{{Label: "v", Data: []float64{1}}}}

	img, err := NewRenderer(DefaultOptions()).Render(spec, "SVG")
	require.NoError(t, err)
	assert.Contains(t, string(img), "<svg")
	assert.Equal(t, "image/svg+xml", ContentType(FormatSVG))
	assert.Equal(t, "image/png", ContentType(FormatPNG))
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(DefaultOptions())

	_, err := r.Render(chart.Spec{ID: "empty", Type: chart.TypeBar}, FormatPNG)
	assert.ErrorIs(t, err, ErrEmptyChart)

	spec := chart.Spec{ID: "bar", Type: chart.TypeBar, Series: []chart.Series{{Data: []float64{1}}}}
	_, err = r.Render(spec, "gif")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}
