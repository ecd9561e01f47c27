package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"autochart/domain/core"
	"autochart/domain/dataset"
)

// AddCalculatedColumn appends a column whose cells are formula evaluated
// against each row. Columns are referenced by name, or as $env["unit price"]
// when the name is not an identifier. A row the formula fails on, or that
// yields a non-finite or non-scalar result, gets a nil cell.
func AddCalculatedColumn(ds dataset.Dataset, name, formula string) (dataset.Dataset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dataset.Dataset{}, core.NewValidationError("name", "column name is required")
	}
	if ds.HasColumn(name) {
		return dataset.Dataset{}, core.NewValidationError("name", fmt.Sprintf("column %q already exists", name))
	}
	if strings.TrimSpace(formula) == "" {
		return dataset.Dataset{}, core.NewValidationError("formula", "formula is required")
	}
	if ds.IsEmpty() {
		return dataset.Dataset{}, fmt.Errorf("%w: no rows to calculate", core.ErrNoData)
	}

	program, err := expr.Compile(formula, expr.AllowUndefinedVariables())
	if err != nil {
		return dataset.Dataset{}, core.NewValidationError("formula", err.Error())
	}

	rows := make([]dataset.Record, len(ds.Rows))
	for i, row := range ds.Rows {
		next := make(dataset.Record, len(row)+1)
		env := make(map[string]interface{}, len(ds.Columns))
		for _, c := range ds.Columns {
			env[c] = row[c]
		}
		for k, v := range row {
			next[k] = v
		}
		next[name] = evaluate(program, env)
		rows[i] = next
	}

	columns := append(append([]string{}, ds.Columns...), name)
	return dataset.New(columns, rows), nil
}

func evaluate(program *vm.Program, env map[string]interface{}) interface{} {
	out, err := expr.Run(program, env)
	if err != nil {
		return nil
	}
	return cell(out)
}

// cell narrows an expression result to a dataset cell value
func cell(v interface{}) interface{} {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil
		}
		return value
	case int:
		return float64(value)
	case int64:
		return float64(value)
	case float32:
		return cell(float64(value))
	case string, bool, time.Time:
		return value
	}
	return nil
}
