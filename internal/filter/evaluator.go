// Package filter evaluates column predicates against dataset rows.
package filter

import (
	"strings"
	"time"

	"autochart/adapters/coercer"
	"autochart/domain/dataset"
	"autochart/domain/filter"
)

// Apply keeps the rows that satisfy every condition, in their original order.
// The input dataset is not modified.
func Apply(ds dataset.Dataset, conditions []filter.Condition) dataset.Dataset {
	if len(conditions) == 0 {
		return ds.WithRows(ds.Rows)
	}
	rows := make([]dataset.Record, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		if Matches(row, conditions) {
			rows = append(rows, row)
		}
	}
	return ds.WithRows(rows)
}

// Matches reports whether a row satisfies all conditions
func Matches(row dataset.Record, conditions []filter.Condition) bool {
	for _, c := range conditions {
		var cell interface{}
		if row != nil {
			cell = row[c.Column]
		}
		if !Evaluate(cell, c) {
			return false
		}
	}
	return true
}

// Evaluate tests one cell against one condition. Unknown operators pass.
func Evaluate(cell interface{}, c filter.Condition) bool {
	switch c.Operator {
	case filter.OpEqual:
		return coercer.Coerce(cell).Equal(coercer.Coerce(c.Value))
	case filter.OpNotEqual:
		return !coercer.Coerce(cell).Equal(coercer.Coerce(c.Value))
	case filter.OpGreater:
		cmp, ok := compare(cell, c.Value)
		return ok && cmp > 0
	case filter.OpLess:
		cmp, ok := compare(cell, c.Value)
		return ok && cmp < 0
	case filter.OpGreaterEqual:
		cmp, ok := compare(cell, c.Value)
		return ok && cmp >= 0
	case filter.OpLessEqual:
		cmp, ok := compare(cell, c.Value)
		return ok && cmp <= 0
	case filter.OpContains:
		return strings.Contains(coercer.String(cell), coercer.String(c.Value))
	case filter.OpStartsWith:
		return strings.HasPrefix(coercer.String(cell), coercer.String(c.Value))
	case filter.OpEndsWith:
		return strings.HasSuffix(coercer.String(cell), coercer.String(c.Value))
	case filter.OpBetween:
		if c.Value2 == nil {
			return false
		}
		lower, ok := compare(cell, c.Value)
		if !ok || lower < 0 {
			return false
		}
		upper, ok := compare(cell, c.Value2)
		return ok && upper <= 0
	case filter.OpIsTrue:
		b, ok := cell.(bool)
		return ok && b
	case filter.OpIsFalse:
		b, ok := cell.(bool)
		return ok && !b
	default:
		return true
	}
}

// compare orders two values that are both numbers or both dates
func compare(a, b interface{}) (int, bool) {
	left, right := coercer.Coerce(a), coercer.Coerce(b)
	switch {
	case left.Kind == coercer.KindNumber && right.Kind == coercer.KindNumber:
		return compareFloat(left.Number, right.Number), true
	case left.Kind == coercer.KindDate && right.Kind == coercer.KindDate:
		return compareTime(left.Time, right.Time), true
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// DrillDown returns the rows whose trimmed value in column equals label
func DrillDown(ds dataset.Dataset, column, label string) dataset.Dataset {
	label = strings.TrimSpace(label)
	rows := make([]dataset.Record, 0)
	for i, row := range ds.Rows {
		if strings.TrimSpace(coercer.String(ds.Value(i, column))) == label {
			rows = append(rows, row)
		}
	}
	return ds.WithRows(rows)
}

var operatorMenus = map[string][]filter.OperatorOption{
	"string": {
		{Label: "Equals", Value: filter.OpEqual},
		{Label: "Contains", Value: filter.OpContains},
		{Label: "Starts With", Value: filter.OpStartsWith},
		{Label: "Ends With", Value: filter.OpEndsWith},
		{Label: "Not Equals", Value: filter.OpNotEqual},
	},
	"number": {
		{Label: "Equals", Value: filter.OpEqual},
		{Label: "Not Equals", Value: filter.OpNotEqual},
		{Label: "Greater Than", Value: filter.OpGreater},
		{Label: "Less Than", Value: filter.OpLess},
		{Label: "Greater Than or Equal", Value: filter.OpGreaterEqual},
		{Label: "Less Than or Equal", Value: filter.OpLessEqual},
		{Label: "Between", Value: filter.OpBetween},
	},
	"date": {
		{Label: "Equals", Value: filter.OpEqual},
		{Label: "Before", Value: filter.OpLess},
		{Label: "After", Value: filter.OpGreater},
		{Label: "Between", Value: filter.OpBetween},
	},
	"boolean": {
		{Label: "Is True", Value: filter.OpIsTrue},
		{Label: "Is False", Value: filter.OpIsFalse},
	},
}

// OperatorsFor returns the operator menu for a column type name.
// Integer columns share the number menu; unknown types get no operators.
func OperatorsFor(columnType string) []filter.OperatorOption {
	if columnType == "integer" {
		columnType = "number"
	}
	menu := operatorMenus[columnType]
	out := make([]filter.OperatorOption, len(menu))
	copy(out, menu)
	return out
}

// NeedsSecondValue reports whether the operator reads Value2
func NeedsSecondValue(op filter.Operator) bool {
	return op == filter.OpBetween
}
