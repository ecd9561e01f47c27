package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochart/domain/core"
	"autochart/domain/dataset"
)

func orders() dataset.Dataset {
	return dataset.New([]string{"region", "quantity", "unit price"}, []dataset.Record{
		{"region": "north", "quantity": 2.0, "unit price": 5.0},
		{"region": "south", "quantity": 0.0, "unit price": 4.0},
		{"region": "east", "quantity": "", "unit price": 3.0},
		{"region": "west", "unit price": 1.5},
	})
}

func TestAddCalculatedColumn(t *testing.T) {
	ds := orders()
	out, err := AddCalculatedColumn(ds, " total ", `quantity * $env["unit price"]`)
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "quantity", "unit price", "total"}, out.Columns)
	assert.Equal(t, []interface{}{10.0, 0.0, nil, nil}, out.Column("total"))
	assert.Equal(t, []string{"region", "quantity", "unit price"}, ds.Columns)
	_, touched := ds.Rows[0]["total"]
	assert.False(t, touched)
}

func TestAddCalculatedColumnResultKinds(t *testing.T) {
	tests := []struct {
		name    string
		formula string
		want    []interface{}
	}{
		{"integer literals widen", "1 + 2", []interface{}{3.0, 3.0, 3.0, 3.0}},
		{"division by zero", `$env["unit price"] / quantity`, []interface{}{2.5, nil, nil, nil}},
		{"text", `region + "-zone"`, []interface{}{"north-zone", "south-zone", "east-zone", "west-zone"}},
		{"comparison", `$env["unit price"] > 3`, []interface{}{true, true, false, false}},
		{"unknown column", "discount * 2", []interface{}{nil, nil, nil, nil}},
		{"non-scalar", "[quantity]", []interface{}{nil, nil, nil, nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := AddCalculatedColumn(orders(), "calc", tt.formula)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Column("calc"))
		})
	}
}

func TestAddCalculatedColumnErrors(t *testing.T) {
	_, err := AddCalculatedColumn(orders(), "region", "1")
	assert.True(t, core.IsValidationError(err))
	assert.Contains(t, err.Error(), "already exists")

	_, err = AddCalculatedColumn(orders(), "  ", "1")
	assert.True(t, core.IsValidationError(err))

	_, err = AddCalculatedColumn(orders(), "calc", " ")
	assert.True(t, core.IsValidationError(err))

	_, err = AddCalculatedColumn(orders(), "calc", "quantity *")
	assert.True(t, core.IsValidationError(err))

	_, err = AddCalculatedColumn(dataset.New([]string{"a"}, nil), "calc", "a + 1")
	assert.ErrorIs(t, err, core.ErrNoData)
}
