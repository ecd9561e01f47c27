package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"autochart/domain/chart"
	"autochart/domain/core"
	"autochart/internal"
)

// ErrEmptyChart is returned for specs with nothing to draw
var ErrEmptyChart = errors.New("chart has no data")

// Formats the renderer can encode
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Options sizes rendered images
type Options struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultOptions returns a 6x4 inch canvas
func DefaultOptions() Options {
	return Options{Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// Renderer draws chart specs as static images with gonum/plot
type Renderer struct {
	options Options
	logger  *internal.Logger
}

// NewRenderer creates a renderer
func NewRenderer(options Options) *Renderer {
	return &Renderer{options: options, logger: internal.DefaultLogger}
}

// ContentType returns the MIME type for a format
func ContentType(format string) string {
	if format == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Render encodes spec in the given format. Pie, doughnut and radar charts
// have no gonum plotter and are drawn as bar charts of the same values.
func (r *Renderer) Render(spec chart.Spec, format string) ([]byte, error) {
	format = strings.ToLower(format)
	if format != FormatPNG && format != FormatSVG {
		return nil, fmt.Errorf("%w: image format %q", core.ErrUnsupportedFormat, format)
	}
	if spec.IsEmpty() {
		return nil, ErrEmptyChart
	}

	p := plot.New()
	p.Title.Text = spec.Title
	p.X.Label.Text = spec.XAxisColumn
	p.Y.Label.Text = spec.YAxisColumn

	var err error
	switch spec.Type {
	case chart.TypeScatter:
		err = addScatter(p, spec)
	case chart.TypeLine:
		err = addLines(p, spec)
	default:
		err = addBars(p, spec)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to plot chart %s: %w", spec.ID, err)
	}

	if spec.Type != chart.TypeScatter && len(spec.Labels) > 0 {
		p.NominalX(spec.Labels...)
		if len(spec.Labels) > 6 {
			p.X.Tick.Label.Rotation = math.Pi / 4
			p.X.Tick.Label.XAlign = draw.XRight
			p.X.Tick.Label.YAlign = draw.YCenter
		}
	}
	if len(spec.Series) > 1 {
		p.Legend.Top = true
	}

	wt, err := p.WriterTo(r.options.Width, r.options.Height, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart %s: %w", spec.ID, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart %s: %w", spec.ID, err)
	}

	r.logger.Debug("[Render] %s chart %s as %s (%d bytes)", spec.Type, spec.ID, format, buf.Len())
	return buf.Bytes(), nil
}

func addBars(p *plot.Plot, spec chart.Spec) error {
	width := vg.Points(40)
	if n := len(spec.Series); n > 1 {
		width = vg.Points(40 / float64(n))
	}
	for i, series := range spec.Series {
		if len(series.Data) == 0 {
			continue
		}
		bars, err := plotter.NewBarChart(plotter.Values(series.Data), width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(i)-float64(len(spec.Series)-1)/2) * width
		p.Add(bars)
		p.Legend.Add(series.Label, bars)
	}
	return nil
}

func addLines(p *plot.Plot, spec chart.Spec) error {
	for i, series := range spec.Series {
		if len(series.Data) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(series.Data))
		for j, v := range series.Data {
			xys[j].X = float64(j)
			xys[j].Y = v
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		p.Add(line, points)
		p.Legend.Add(series.Label, line, points)
	}
	return nil
}

func addScatter(p *plot.Plot, spec chart.Spec) error {
	for i, series := range spec.Series {
		if len(series.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(series.Points))
		for j, pt := range series.Points {
			xys[j].X = pt.X
			xys[j].Y = pt.Y
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		scatter.GlyphStyle.Color = plotutil.Color(i)
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(scatter)
		p.Legend.Add(series.Label, scatter)
	}
	return nil
}
