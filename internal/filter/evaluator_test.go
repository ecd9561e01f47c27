package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"autochart/domain/dataset"
	"autochart/domain/filter"
)

func people() dataset.Dataset {
	return dataset.New([]string{"name", "age", "joined", "active"}, []dataset.Record{
		{"name": "Ada", "age": 17, "joined": "2024-01-10", "active": true},
		{"name": "Bob", "age": "18", "joined": "2024-02-10", "active": false},
		{"name": "Cyd", "age": 65, "joined": "2024-03-10", "active": "true"},
		{"name": "Dee", "age": 66.0, "joined": "not a date"},
	})
}

func names(ds dataset.Dataset) []string {
	out := make([]string, 0, ds.Len())
	for _, row := range ds.Rows {
		out = append(out, row["name"].(string))
	}
	return out
}

func TestApplyOperators(t *testing.T) {
	tests := []struct {
		name string
		cond filter.Condition
		want []string
	}{
		{"equal number across types", filter.Condition{Column: "age", Operator: filter.OpEqual, Value: 18}, []string{"Bob"}},
		{"equal string", filter.Condition{Column: "name", Operator: filter.OpEqual, Value: "Cyd"}, []string{"Cyd"}},
		{"not equal", filter.Condition{Column: "name", Operator: filter.OpNotEqual, Value: "Cyd"}, []string{"Ada", "Bob", "Dee"}},
		{"greater", filter.Condition{Column: "age", Operator: filter.OpGreater, Value: 18}, []string{"Cyd", "Dee"}},
		{"less equal", filter.Condition{Column: "age", Operator: filter.OpLessEqual, Value: "18"}, []string{"Ada", "Bob"}},
		{"greater equal", filter.Condition{Column: "age", Operator: filter.OpGreaterEqual, Value: 65}, []string{"Cyd", "Dee"}},
		{"less", filter.Condition{Column: "age", Operator: filter.OpLess, Value: 17}, []string{}},
		{"ordering on text never matches", filter.Condition{Column: "name", Operator: filter.OpGreater, Value: "A"}, []string{}},
		{"date before", filter.Condition{Column: "joined", Operator: filter.OpLess, Value: "2024-02-10"}, []string{"Ada"}},
		{"contains", filter.Condition{Column: "name", Operator: filter.OpContains, Value: "d"}, []string{"Ada", "Cyd"}},
		{"contains is case sensitive", filter.Condition{Column: "name", Operator: filter.OpContains, Value: "D"}, []string{"Dee"}},
		{"starts with", filter.Condition{Column: "name", Operator: filter.OpStartsWith, Value: "B"}, []string{"Bob"}},
		{"ends with", filter.Condition{Column: "name", Operator: filter.OpEndsWith, Value: "e"}, []string{"Dee"}},
		{"is true ignores coercion", filter.Condition{Column: "active", Operator: filter.OpIsTrue}, []string{"Ada"}},
		{"is false", filter.Condition{Column: "active", Operator: filter.OpIsFalse}, []string{"Bob"}},
		{"between dates", filter.Condition{Column: "joined", Operator: filter.OpBetween, Value: "2024-02-01", Value2: "2024-03-31"}, []string{"Bob", "Cyd"}},
		{"between without upper", filter.Condition{Column: "age", Operator: filter.OpBetween, Value: 1}, []string{}},
		{"unknown operator passes", filter.Condition{Column: "age", Operator: "~=", Value: 1}, []string{"Ada", "Bob", "Cyd", "Dee"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(people(), []filter.Condition{tt.cond})
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestApplyBetweenIsInclusive(t *testing.T) {
	got := Apply(people(), []filter.Condition{
		{Column: "age", Operator: filter.OpBetween, Value: 18, Value2: 65},
	})
	assert.Equal(t, []string{"Bob", "Cyd"}, names(got))
}

func TestApplyConjunction(t *testing.T) {
	got := Apply(people(), []filter.Condition{
		{Column: "age", Operator: filter.OpGreaterEqual, Value: 18},
		{Column: "name", Operator: filter.OpContains, Value: "d"},
	})
	assert.Equal(t, []string{"Cyd"}, names(got))
}

func TestApplyWithoutConditionsKeepsEverything(t *testing.T) {
	ds := people()
	got := Apply(ds, nil)

	assert.Equal(t, ds.Columns, got.Columns)
	assert.Equal(t, 4, got.Len())
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	ds := people()
	_ = Apply(ds, []filter.Condition{{Column: "name", Operator: filter.OpEqual, Value: "Ada"}})
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, "Ada", ds.Rows[0]["name"])
}

func TestEqualMissingValues(t *testing.T) {
	assert.True(t, Evaluate(nil, filter.Condition{Operator: filter.OpEqual, Value: nil}))
	assert.False(t, Evaluate(nil, filter.Condition{Operator: filter.OpEqual, Value: ""}))
	assert.True(t, Evaluate("5", filter.Condition{Operator: filter.OpNotEqual, Value: "five"}))
}

func TestDrillDown(t *testing.T) {
	ds := dataset.New([]string{"name", "team"}, []dataset.Record{
		{"name": "a", "team": "red"},
		{"name": "b", "team": " red "},
		{"name": "c", "team": "blue"},
	})

	got := DrillDown(ds, "team", "red")
	assert.Equal(t, []string{"a", "b"}, names(got))
	assert.Equal(t, 0, DrillDown(ds, "team", "green").Len())
}

func TestOperatorsFor(t *testing.T) {
	assert.Len(t, OperatorsFor("string"), 5)
	assert.Len(t, OperatorsFor("number"), 7)
	assert.Equal(t, OperatorsFor("number"), OperatorsFor("integer"))
	assert.Equal(t, filter.OpLess, OperatorsFor("date")[1].Value)
	assert.Len(t, OperatorsFor("boolean"), 2)
	assert.Empty(t, OperatorsFor("unknown"))

	menu := OperatorsFor("boolean")
	menu[0].Label = "changed"
	assert.Equal(t, "Is True", OperatorsFor("boolean")[0].Label)

	assert.True(t, NeedsSecondValue(filter.OpBetween))
	assert.False(t, NeedsSecondValue(filter.OpEqual))
}
