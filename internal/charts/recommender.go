package charts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"autochart/adapters/coercer"
	"autochart/domain/chart"
	"autochart/domain/dataset"
	"autochart/domain/profiling"
	"autochart/internal"
	"autochart/internal/aggregation"
	"autochart/internal/stats"
)

// Options tunes chart recommendation caps and thresholds
type Options struct {
	MaxCharts          int
	MaxNumericColumns  int
	HistogramBins      int
	HistogramMinValues int

	MaxCategoricalColumns int
	MinCategories         int
	MaxCategories         int
	MaxCategoryLabels     int
	MaxPieLabels          int

	MaxTimeSeriesColumns int
	MinTimeSeriesDates   int

	MaxCorrelationPairs int
	MaxScatterPoints    int
	MinScatterPoints    int
}

// DefaultOptions returns the dashboard defaults
func DefaultOptions() Options {
	return Options{
		MaxCharts:             12,
		MaxNumericColumns:     4,
		HistogramBins:         8,
		HistogramMinValues:    10,
		MaxCategoricalColumns: 4,
		MinCategories:         2,
		MaxCategories:         50,
		MaxCategoryLabels:     15,
		MaxPieLabels:          8,
		MaxTimeSeriesColumns:  2,
		MinTimeSeriesDates:    5,
		MaxCorrelationPairs:   2,
		MaxScatterPoints:      200,
		MinScatterPoints:      5,
	}
}

// Recommender picks the charts worth drawing for a profiled dataset
type Recommender struct {
	options Options
	logger  *internal.Logger
}

// NewRecommender creates a recommender
func NewRecommender(options Options) *Recommender {
	return &Recommender{options: options, logger: internal.DefaultLogger}
}

// Recommend builds chart specs in fixed precedence: overview, numeric,
// categorical, time series, correlation. The list is truncated to MaxCharts,
// so later groups are the ones dropped.
func (r *Recommender) Recommend(ds dataset.Dataset, profile profiling.Profile) []chart.Spec {
	if ds.IsEmpty() {
		return []chart.Spec{}
	}

	specs := []chart.Spec{r.overview(ds)}
	specs = append(specs, r.numeric(ds, profile)...)
	specs = append(specs, r.categorical(ds, profile)...)
	specs = append(specs, r.timeSeries(ds, profile)...)
	specs = append(specs, r.correlation(ds, profile)...)

	if r.options.MaxCharts > 0 && len(specs) > r.options.MaxCharts {
		r.logger.Debug("[Charts] truncating %d recommendations to %d", len(specs), r.options.MaxCharts)
		specs = specs[:r.options.MaxCharts]
	}
	return specs
}

func (r *Recommender) overview(ds dataset.Dataset) chart.Spec {
	return chart.Spec{
		ID:     "overview-total",
		Title:  "Total Records",
		Type:   chart.TypeDoughnut,
		Labels: []string{"Total Records"},
		Series: []chart.Series{{Label: "Records", Data: []float64{float64(ds.Len())}}},
	}
}

func (r *Recommender) numeric(ds dataset.Dataset, profile profiling.Profile) []chart.Spec {
	var specs []chart.Spec
	for _, column := range limit(profile.ContinuousColumns(), r.options.MaxNumericColumns) {
		values := NumericValues(ds, column)
		if len(values) == 0 {
			continue
		}
		summary, err := stats.Summarize(values)
		if err != nil {
			continue
		}

		specs = append(specs, chart.Spec{
			ID:          "numeric-stats-" + Slug(column),
			Title:       column + " Statistics",
			Type:        chart.TypeBar,
			Labels:      []string{"Min", "Avg", "Max"},
			Series:      []chart.Series{{Label: column, Data: []float64{summary.Min, summary.Mean, summary.Max}}},
			YAxisColumn: column,
			Meta:        map[string]interface{}{"median": summary.Median},
		})

		if len(values) > r.options.HistogramMinValues {
			hist := stats.Histogram(values, r.options.HistogramBins)
			specs = append(specs, chart.Spec{
				ID:          "numeric-dist-" + Slug(column),
				Title:       column + " Distribution",
				Type:        chart.TypeLine,
				Labels:      hist.Bins,
				Series:      []chart.Series{{Label: "Frequency", Data: toFloats(hist.Counts)}},
				XAxisColumn: column,
			})
		}
	}
	return specs
}

func (r *Recommender) categorical(ds dataset.Dataset, profile profiling.Profile) []chart.Spec {
	columns := profile.Select(func(cp profiling.ColumnProfile) bool {
		eligible := cp.Type == profiling.TypeString || (cp.Type.IsNumeric() && cp.IsLikelyCategorical)
		return eligible && cp.UniqueCount >= r.options.MinCategories && cp.UniqueCount <= r.options.MaxCategories
	})

	var specs []chart.Spec
	for _, column := range limit(columns, r.options.MaxCategoricalColumns) {
		counts := aggregation.TopN(aggregation.CountValues(ds, column), r.options.MaxCategoryLabels)
		if counts.Len() == 0 {
			continue
		}
		labels := counts.Keys()

		specs = append(specs, chart.Spec{
			ID:          "categorical-bar-" + Slug(column),
			Title:       column + " Distribution",
			Type:        chart.TypeBar,
			Labels:      labels,
			Series:      []chart.Series{{Label: "Count", Data: counts.Values()}},
			XAxisColumn: column,
		})

		if len(labels) > 1 && len(labels) <= r.options.MaxPieLabels {
			specs = append(specs, chart.Spec{
				ID:          "categorical-pie-" + Slug(column),
				Title:       "Top " + column + " Categories",
				Type:        chart.TypePie,
				Labels:      labels,
				Series:      []chart.Series{{Label: "Count", Data: counts.Values()}},
				XAxisColumn: column,
			})
		}
	}
	return specs
}

func (r *Recommender) timeSeries(ds dataset.Dataset, profile profiling.Profile) []chart.Spec {
	columns := profile.Select(func(cp profiling.ColumnProfile) bool {
		return cp.Type == profiling.TypeDate && cp.IsLikelyTimeSeries
	})

	var specs []chart.Spec
	for _, column := range limit(columns, r.options.MaxTimeSeriesColumns) {
		var dates []time.Time
		for _, raw := range ds.Column(column) {
			if t, ok := coercer.ParseDate(raw); ok {
				dates = append(dates, t)
			}
		}
		if len(dates) < r.options.MinTimeSeriesDates {
			r.logger.Trace("[Charts] %q has %d dates, skipping timeline", column, len(dates))
			continue
		}

		labels, counts := MonthlyBuckets(dates)
		specs = append(specs, chart.Spec{
			ID:          "timeseries-" + Slug(column),
			Title:       column + " Timeline (Monthly)",
			Type:        chart.TypeLine,
			Labels:      labels,
			Series:      []chart.Series{{Label: "Records", Data: counts}},
			XAxisColumn: column,
		})
	}
	return specs
}

func (r *Recommender) correlation(ds dataset.Dataset, profile profiling.Profile) []chart.Spec {
	columns := profile.ContinuousColumns()
	pairs := len(columns) - 1
	if pairs > r.options.MaxCorrelationPairs {
		pairs = r.options.MaxCorrelationPairs
	}

	var specs []chart.Spec
	for i := 0; i < pairs; i++ {
		x, y := columns[i], columns[i+1]
		points := ScatterPoints(ds, x, y, r.options.MaxScatterPoints, strictNumber)
		if len(points) < r.options.MinScatterPoints {
			continue
		}

		spec := chart.Spec{
			ID:          "correlation-" + Slug(x) + "-" + Slug(y),
			Title:       fmt.Sprintf("%s vs %s", y, x),
			Type:        chart.TypeScatter,
			Series:      []chart.Series{{Label: fmt.Sprintf("%s vs %s", y, x), Points: points}},
			Labels:      []string{},
			XAxisColumn: x,
			YAxisColumn: y,
		}
		xs, ys := splitPoints(points)
		if rho, ok := stats.Correlation(xs, ys); ok {
			spec.Meta = map[string]interface{}{
				"pearson_r": rho,
				"p_value":   stats.CorrelationPValue(rho, len(points)),
			}
		}
		specs = append(specs, spec)
	}
	return specs
}

// NumericValues returns the strictly numeric values of a column in row order
func NumericValues(ds dataset.Dataset, column string) []float64 {
	var values []float64
	for _, raw := range ds.Column(column) {
		if f, ok := strictNumber(raw); ok {
			values = append(values, f)
		}
	}
	return values
}

func strictNumber(raw interface{}) (float64, bool) {
	v := coercer.Coerce(raw)
	return v.Number, v.Kind == coercer.KindNumber
}

// ScatterPoints pairs two columns row by row, keeping rows where both sides
// parse. maxPoints <= 0 keeps every point.
func ScatterPoints(ds dataset.Dataset, x, y string, maxPoints int, parse func(interface{}) (float64, bool)) []chart.Point {
	points := []chart.Point{}
	for i := range ds.Rows {
		px, okX := parse(ds.Value(i, x))
		py, okY := parse(ds.Value(i, y))
		if !okX || !okY {
			continue
		}
		points = append(points, chart.Point{X: px, Y: py})
		if maxPoints > 0 && len(points) == maxPoints {
			break
		}
	}
	return points
}

// MonthlyBuckets counts dates per calendar month, chronologically.
// Labels read like "Jan 2024".
func MonthlyBuckets(dates []time.Time) ([]string, []float64) {
	buckets := make(map[string]float64)
	for _, d := range dates {
		buckets[d.Format("2006-01")]++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	labels := make([]string, len(keys))
	counts := make([]float64, len(keys))
	for i, k := range keys {
		month, _ := time.Parse("2006-01", k)
		labels[i] = month.Format("Jan 2006")
		counts[i] = buckets[k]
	}
	return labels, counts
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a column name into an ID fragment
func Slug(s string) string {
	slug := strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if slug == "" {
		return "column"
	}
	return slug
}

func limit(columns []string, n int) []string {
	if n > 0 && len(columns) > n {
		return columns[:n]
	}
	return columns
}

func toFloats(counts []int) []float64 {
	out := make([]float64, len(counts))
	for i, c := range counts {
		out[i] = float64(c)
	}
	return out
}

func splitPoints(points []chart.Point) ([]float64, []float64) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.X, p.Y
	}
	return xs, ys
}
