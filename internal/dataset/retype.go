// Package dataset holds transformations that produce new dataset snapshots.
package dataset

import (
	"fmt"
	"strings"
	"time"

	"autochart/adapters/coercer"
	"autochart/domain/core"
	"autochart/domain/dataset"
)

// Target types accepted by UpdateColumnType
const (
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeDate    = "date"
	TypeString  = "string"
)

// UpdateColumnType converts every cell of column to newType and returns a new
// dataset. Null and blank cells are left alone; cells that cannot be converted
// become nil.
func UpdateColumnType(ds dataset.Dataset, column, newType string) (dataset.Dataset, error) {
	if !ds.HasColumn(column) {
		return dataset.Dataset{}, fmt.Errorf("%w: %s", core.ErrColumnNotFound, column)
	}

	var convert func(interface{}) interface{}
	switch strings.ToLower(newType) {
	case TypeNumber:
		convert = toNumber
	case TypeBoolean:
		convert = toBoolean
	case TypeDate:
		convert = toDate
	case TypeString:
		convert = func(v interface{}) interface{} { return coercer.String(v) }
	default:
		return dataset.Dataset{}, core.NewValidationError("type", fmt.Sprintf("unsupported column type %q", newType))
	}

	rows := make([]dataset.Record, len(ds.Rows))
	for i, row := range ds.Rows {
		next := make(dataset.Record, len(row))
		for k, v := range row {
			next[k] = v
		}
		value := next[column]
		if value != nil && strings.TrimSpace(coercer.String(value)) != "" {
			next[column] = convert(value)
		}
		rows[i] = next
	}
	return ds.WithRows(rows), nil
}

func toNumber(v interface{}) interface{} {
	if b, ok := v.(bool); ok {
		if b {
			return 1.0
		}
		return 0.0
	}
	c := coercer.Coerce(v)
	if c.Kind == coercer.KindNumber {
		return c.Number
	}
	return nil
}

func toBoolean(v interface{}) interface{} {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "1":
			return true
		case "false", "0":
			return false
		}
		return nil
	}
	c := coercer.Coerce(v)
	if c.Kind == coercer.KindNumber {
		switch c.Number {
		case 1:
			return true
		case 0:
			return false
		}
	}
	return nil
}

func toDate(v interface{}) interface{} {
	switch value := v.(type) {
	case time.Time:
		return value
	case string:
		s := strings.TrimSpace(value)
		if t, ok := coercer.ParseDate(s); ok {
			return t
		}
		if t, err := time.Parse("2006", s); err == nil {
			return t
		}
		return nil
	}
	c := coercer.Coerce(v)
	if c.Kind == coercer.KindNumber {
		return time.UnixMilli(int64(c.Number)).UTC()
	}
	return nil
}
