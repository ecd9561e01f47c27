package profiling

import (
	"context"
	"strings"
	"time"

	"github.com/montanaflynn/stats"

	"autochart/adapters/coercer"
	"autochart/domain/dataset"
	"autochart/domain/profiling"
	"autochart/internal"
)

const (
	categoricalRatio     = 0.2
	categoricalMaxUnique = 10
)

// ColumnProfiler infers column types and per-column statistics.
// It holds no state between calls; profiling the same dataset twice yields the same result.
type ColumnProfiler struct {
	options profiling.ProfileOptions
	logger  *internal.Logger
}

// NewColumnProfiler creates a profiler with the given options
func NewColumnProfiler(options profiling.ProfileOptions) *ColumnProfiler {
	if options.SampleValueCount <= 0 {
		options.SampleValueCount = profiling.DefaultProfileOptions().SampleValueCount
	}
	return &ColumnProfiler{
		options: options,
		logger:  internal.DefaultLogger,
	}
}

// Profile builds the profile map of every column, in dataset column order
func (p *ColumnProfiler) Profile(ds dataset.Dataset) profiling.Profile {
	profile := profiling.NewProfile(ds.Len())
	for _, column := range ds.Columns {
		profile.Add(p.ProfileColumn(column, ds.Column(column)))
	}
	return profile
}

// ProfileDataset implements ports.ProfilerPort
func (p *ColumnProfiler) ProfileDataset(ctx context.Context, ds dataset.Dataset) (profiling.Profile, error) {
	profile := profiling.NewProfile(ds.Len())
	for _, column := range ds.Columns {
		if err := ctx.Err(); err != nil {
			return profiling.Profile{}, err
		}
		profile.Add(p.ProfileColumn(column, ds.Column(column)))
	}
	return profile, nil
}

// ProfileColumn profiles one column from its raw values in row order
func (p *ColumnProfiler) ProfileColumn(name string, values []interface{}) profiling.ColumnProfile {
	cp := profiling.ColumnProfile{
		Name:         name,
		Type:         profiling.TypeUnknown,
		SampleValues: []interface{}{},
	}

	coerced := make([]coercer.Value, 0, len(values))
	unique := make(map[string]struct{})

	for _, raw := range values {
		v := coercer.Coerce(raw)
		switch v.Kind {
		case coercer.KindMissing:
			cp.NullCount++
			continue
		case coercer.KindEmpty:
			cp.EmptyCount++
			continue
		}

		cp.NonNullCount++
		if len(cp.SampleValues) < p.options.SampleValueCount {
			cp.SampleValues = append(cp.SampleValues, raw)
		}
		unique[strings.TrimSpace(coercer.String(raw))] = struct{}{}
		coerced = append(coerced, v)
	}
	cp.UniqueCount = len(unique)

	if cp.NonNullCount == 0 {
		p.logger.Debug("[Profiler] column %q has no values, type unknown", name)
		return cp
	}

	cp.Type = voteType(p.sample(coerced))

	switch {
	case cp.Type.IsNumeric():
		p.fillNumeric(&cp, coerced)
	case cp.Type == profiling.TypeDate:
		fillDates(&cp, coerced)
	}

	p.logger.Trace("[Profiler] column %q: type=%s non_null=%d unique=%d", name, cp.Type, cp.NonNullCount, cp.UniqueCount)
	return cp
}

func (p *ColumnProfiler) sample(values []coercer.Value) []coercer.Value {
	if p.options.TypeSampleSize > 0 && len(values) > p.options.TypeSampleSize {
		return values[:p.options.TypeSampleSize]
	}
	return values
}

// voteType is all-or-nothing: a single value that fails a type moves the
// column to the next looser type.
func voteType(values []coercer.Value) profiling.ColumnType {
	allInteger, allNumber, allDate := true, true, true
	for _, v := range values {
		switch v.Kind {
		case coercer.KindNumber:
			allDate = false
			if !v.IsInteger {
				allInteger = false
			}
		case coercer.KindDate:
			allInteger, allNumber = false, false
		default:
			return profiling.TypeString
		}
		if !allNumber && !allDate {
			return profiling.TypeString
		}
	}

	switch {
	case allInteger:
		return profiling.TypeInteger
	case allNumber:
		return profiling.TypeNumber
	case allDate:
		return profiling.TypeDate
	}
	return profiling.TypeString
}

func (p *ColumnProfiler) fillNumeric(cp *profiling.ColumnProfile, values []coercer.Value) {
	var data stats.Float64Data
	for _, v := range values {
		if v.Kind == coercer.KindNumber {
			data = append(data, v.Number)
		}
	}

	if len(data) > 0 {
		if lo, err := data.Min(); err == nil {
			cp.Min = &lo
		}
		if hi, err := data.Max(); err == nil {
			cp.Max = &hi
		}
		if mean, err := data.Mean(); err == nil {
			cp.Mean = &mean
		}
	} else {
		p.logger.Debug("[Profiler] numeric column %q has no parsable values", cp.Name)
	}

	ratio := float64(cp.UniqueCount) / float64(cp.NonNullCount)
	cp.IsLikelyCategorical = ratio < categoricalRatio && cp.UniqueCount <= categoricalMaxUnique
}

func fillDates(cp *profiling.ColumnProfile, values []coercer.Value) {
	var minDate, maxDate time.Time
	found := false
	for _, v := range values {
		if v.Kind != coercer.KindDate {
			continue
		}
		if !found || v.Time.Before(minDate) {
			minDate = v.Time
		}
		if !found || v.Time.After(maxDate) {
			maxDate = v.Time
		}
		found = true
	}

	if found {
		cp.MinDate = &minDate
		cp.MaxDate = &maxDate
	}
	cp.IsLikelyTimeSeries = cp.UniqueCount > 1
}
