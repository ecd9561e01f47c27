// Package aggregation groups rows by a key column and reduces a value column.
package aggregation

import (
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"

	"autochart/adapters/coercer"
	"autochart/domain/aggregation"
	"autochart/domain/dataset"
)

// GroupKey returns the trimmed string key of a raw grouping value.
// ok is false for values that mark a missing group.
func GroupKey(raw interface{}) (string, bool) {
	key := strings.TrimSpace(coercer.String(raw))
	switch key {
	case "", "undefined", "null":
		return "", false
	}
	return key, true
}

// Aggregate groups ds by spec.GroupColumn and reduces spec.ValueColumn.
// Values that fail numeric parsing do not contribute, and groups left with no
// contributing value are dropped from the result.
func Aggregate(ds dataset.Dataset, spec aggregation.Spec) aggregation.Result {
	var order []string
	groups := make(map[string][]float64)

	for i := range ds.Rows {
		key, ok := GroupKey(ds.Value(i, spec.GroupColumn))
		if !ok {
			continue
		}
		value, ok := coercer.ParseNumeric(ds.Value(i, spec.ValueColumn))
		if !ok {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], value)
	}

	var result aggregation.Result
	for _, key := range order {
		result.Set(key, reduce(spec.Function, groups[key]))
	}
	return result
}

func reduce(fn aggregation.Function, values []float64) float64 {
	switch fn {
	case aggregation.FuncCount:
		return float64(len(values))
	case aggregation.FuncAverage:
		return floats.Sum(values) / float64(len(values))
	case aggregation.FuncMin:
		return floats.Min(values)
	case aggregation.FuncMax:
		return floats.Max(values)
	default:
		return floats.Sum(values)
	}
}

// CountValues counts rows per group key of column, in first-encounter order
func CountValues(ds dataset.Dataset, column string) aggregation.Result {
	var result aggregation.Result
	for i := range ds.Rows {
		key, ok := GroupKey(ds.Value(i, column))
		if !ok {
			continue
		}
		current, _ := result.Get(key)
		result.Set(key, current+1)
	}
	return result
}

// TopN sorts groups by value descending, keeping encounter order for ties,
// and keeps at most n of them. n <= 0 keeps every group.
func TopN(result aggregation.Result, n int) aggregation.Result {
	groups := make([]aggregation.Group, len(result.Groups))
	copy(groups, result.Groups)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value > groups[j].Value
	})
	return aggregation.NewResult(First(groups, n))
}

// First returns at most n leading groups. n <= 0 returns every group.
func First(groups []aggregation.Group, n int) []aggregation.Group {
	if n > 0 && len(groups) > n {
		return groups[:n]
	}
	return groups
}
