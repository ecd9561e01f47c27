package charts

import (
	"fmt"

	"autochart/adapters/coercer"
	"autochart/domain/aggregation"
	"autochart/domain/chart"
	"autochart/domain/core"
	"autochart/domain/dataset"
	engine "autochart/internal/aggregation"
)

// Builder assembles charts from an explicit column/type choice
type Builder struct {
	TopN       int
	PieTopN    int
	RadarLimit int
}

// NewBuilder creates a builder keeping topN bars or line points
func NewBuilder(topN int) *Builder {
	return &Builder{TopN: topN, PieTopN: 10, RadarLimit: 8}
}

var defaultBuilder = NewBuilder(20)

// Build builds a chart with the default limits
func Build(ds dataset.Dataset, req chart.BuildRequest) (chart.Spec, error) {
	return defaultBuilder.Build(ds, req)
}

// Validate checks a build request against the dataset columns
func Validate(ds dataset.Dataset, req chart.BuildRequest) error {
	if !req.Type.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedChart, req.Type)
	}
	if req.XAxisColumn == "" {
		return fmt.Errorf("%w: x axis", core.ErrMissingAxis)
	}
	if requiresYAxis(req.Type) && req.YAxisColumn == "" {
		return fmt.Errorf("%w: y axis for %s chart", core.ErrMissingAxis, req.Type)
	}
	for _, column := range []string{req.XAxisColumn, req.YAxisColumn} {
		if column != "" && !ds.HasColumn(column) {
			return fmt.Errorf("%w: %s", core.ErrColumnNotFound, column)
		}
	}
	if ds.IsEmpty() {
		return core.ErrNoData
	}
	return nil
}

func requiresYAxis(t chart.Type) bool {
	return t != chart.TypePie && t != chart.TypeDoughnut
}

// Build validates req and assembles the chart data from ds
func (b *Builder) Build(ds dataset.Dataset, req chart.BuildRequest) (chart.Spec, error) {
	if err := Validate(ds, req); err != nil {
		return chart.Spec{}, err
	}
	fn := req.Aggregation
	if fn == "" {
		fn = aggregation.FuncSum
	}

	spec := chart.Spec{
		Title:       req.Title,
		Type:        req.Type,
		Labels:      []string{},
		XAxisColumn: req.XAxisColumn,
		YAxisColumn: req.YAxisColumn,
		Meta:        map[string]interface{}{"aggregation": string(fn)},
	}
	if spec.Title == "" {
		spec.Title = Title(req.Type, req.XAxisColumn, req.YAxisColumn, fn)
	}

	switch req.Type {
	case chart.TypeScatter:
		label := fmt.Sprintf("%s vs %s", req.YAxisColumn, req.XAxisColumn)
		points := ScatterPoints(ds, req.XAxisColumn, req.YAxisColumn, 0, coercer.ParseNumeric)
		spec.Series = []chart.Series{{Label: label, Points: points}}

	case chart.TypePie, chart.TypeDoughnut:
		counts := engine.TopN(engine.CountValues(ds, req.XAxisColumn), b.PieTopN)
		spec.Labels = counts.Keys()
		spec.Series = []chart.Series{{Label: req.XAxisColumn, Data: counts.Values()}}

	case chart.TypeRadar:
		result := engine.Aggregate(ds, aggregation.Spec{GroupColumn: req.XAxisColumn, ValueColumn: req.YAxisColumn, Function: fn})
		groups := aggregation.NewResult(engine.First(result.Groups, b.RadarLimit))
		spec.Labels = groups.Keys()
		spec.Series = []chart.Series{{Label: fmt.Sprintf("%s of %s", fn, req.YAxisColumn), Data: groups.Values()}}

	default:
		result := engine.TopN(engine.Aggregate(ds, aggregation.Spec{GroupColumn: req.XAxisColumn, ValueColumn: req.YAxisColumn, Function: fn}), b.TopN)
		spec.Labels = result.Keys()
		spec.Series = []chart.Series{{Label: fmt.Sprintf("%s of %s", fn, req.YAxisColumn), Data: result.Values()}}
	}

	return spec, nil
}

// Title generates the default chart title for a build choice
func Title(t chart.Type, x, y string, fn aggregation.Function) string {
	if x == "" {
		return "New Chart"
	}
	if y == "" {
		y = "Value"
	}
	switch t {
	case chart.TypePie, chart.TypeDoughnut:
		return x + " Distribution"
	case chart.TypeScatter:
		return y + " vs " + x
	}
	return fmt.Sprintf("%s of %s by %s", fn.Label(), y, x)
}

// Refresh rebuilds a saved builder chart against new data, keeping its ID and title.
// Charts that were not produced by the builder are returned unchanged.
func (b *Builder) Refresh(ds dataset.Dataset, spec chart.Spec) chart.Spec {
	fn, ok := spec.Meta["aggregation"].(string)
	if !ok {
		return spec
	}
	rebuilt, err := b.Build(ds, chart.BuildRequest{
		Type:        spec.Type,
		Title:       spec.Title,
		XAxisColumn: spec.XAxisColumn,
		YAxisColumn: spec.YAxisColumn,
		Aggregation: aggregation.Function(fn),
	})
	if err != nil {
		// no data left after filtering
		spec.Labels = []string{}
		spec.Series = []chart.Series{}
		return spec
	}
	rebuilt.ID = spec.ID
	return rebuilt
}
