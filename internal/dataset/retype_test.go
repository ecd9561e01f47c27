package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochart/domain/core"
	"autochart/domain/dataset"
)

func sample() dataset.Dataset {
	return dataset.New([]string{"v", "other"}, []dataset.Record{
		{"v": "12", "other": "a"},
		{"v": "007", "other": "b"},
		{"v": "abc", "other": "c"},
		{"v": nil, "other": "d"},
		{"v": "  ", "other": "e"},
		{"v": true, "other": "f"},
		{"v": 0, "other": "g"},
		{"v": "2024-02-03", "other": "h"},
	})
}

func column(ds dataset.Dataset) []interface{} {
	return ds.Column("v")
}

func TestUpdateColumnTypeNumber(t *testing.T) {
	out, err := UpdateColumnType(sample(), "v", "number")
	require.NoError(t, err)

	assert.Equal(t, []interface{}{12.0, 7.0, nil, nil, "  ", 1.0, 0.0, nil}, column(out))
}

func TestUpdateColumnTypeBoolean(t *testing.T) {
	ds := dataset.New([]string{"v"}, []dataset.Record{
		{"v": "TRUE"}, {"v": "0"}, {"v": "yes"}, {"v": 1}, {"v": 2}, {"v": false}, {"v": nil},
	})
	out, err := UpdateColumnType(ds, "v", "boolean")
	require.NoError(t, err)

	assert.Equal(t, []interface{}{true, false, nil, true, nil, false, nil}, column(out))
}

func TestUpdateColumnTypeDate(t *testing.T) {
	ds := dataset.New([]string{"v"}, []dataset.Record{
		{"v": "2024-02-03"}, {"v": "2023"}, {"v": "later"}, {"v": 0},
	})
	out, err := UpdateColumnType(ds, "v", "date")
	require.NoError(t, err)

	values := column(out)
	assert.Equal(t, time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), values[0])
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), values[1])
	assert.Nil(t, values[2])
	assert.Equal(t, time.Unix(0, 0).UTC(), values[3])
}

func TestUpdateColumnTypeString(t *testing.T) {
	ds := dataset.New([]string{"v"}, []dataset.Record{{"v": 1.5}, {"v": true}, {"v": nil}})
	out, err := UpdateColumnType(ds, "v", "string")
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"1.5", "true", nil}, column(out))
}

func TestUpdateColumnTypeLeavesInputAlone(t *testing.T) {
	ds := sample()
	out, err := UpdateColumnType(ds, "v", "number")
	require.NoError(t, err)

	assert.Equal(t, "12", ds.Rows[0]["v"])
	assert.Equal(t, "a", out.Rows[0]["other"])
	assert.Equal(t, ds.Columns, out.Columns)
}

func TestUpdateColumnTypeErrors(t *testing.T) {
	_, err := UpdateColumnType(sample(), "missing", "number")
	assert.ErrorIs(t, err, core.ErrColumnNotFound)

	_, err = UpdateColumnType(sample(), "v", "currency")
	assert.True(t, core.IsValidationError(err))
}
