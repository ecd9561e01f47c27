package profiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileKeepsColumnOrder(t *testing.T) {
	p := NewProfile(3)
	p.Add(ColumnProfile{Name: "z", Type: TypeString})
	p.Add(ColumnProfile{Name: "a", Type: TypeInteger})
	p.Add(ColumnProfile{Name: "m", Type: TypeNumber, IsLikelyCategorical: true})
	p.Add(ColumnProfile{Name: "d", Type: TypeDate})
	p.Add(ColumnProfile{Name: "z", Type: TypeUnknown})

	assert.Equal(t, []string{"z", "a", "m", "d"}, p.Columns)
	assert.Equal(t, 4, p.Len())

	z, ok := p.Get("z")
	assert.True(t, ok)
	assert.Equal(t, TypeUnknown, z.Type)

	assert.Equal(t, []string{"a", "m"}, p.NumericColumns())
	assert.Equal(t, []string{"a"}, p.ContinuousColumns())
	assert.Equal(t, []string{"d"}, p.DateColumns())
	assert.Equal(t, []string{"m"}, p.CategoricalColumns())
}

func TestColumnTypeIsNumeric(t *testing.T) {
	assert.True(t, TypeInteger.IsNumeric())
	assert.True(t, TypeNumber.IsNumeric())
	assert.False(t, TypeDate.IsNumeric())
	assert.False(t, TypeString.IsNumeric())
	assert.False(t, TypeUnknown.IsNumeric())
}
