package stats

import (
	"testing"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	shape, err := Describe([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100})
	require.NoError(t, err)

	assert.Greater(t, shape.StdDev, 0.0)
	assert.Greater(t, shape.Skewness, 0.0, "long right tail")
	assert.Equal(t, 1, shape.Outliers)
	assert.LessOrEqual(t, shape.Q1, shape.Q3)
}

func TestDescribeConstant(t *testing.T) {
	shape, err := Describe([]float64{3, 3, 3, 3})
	require.NoError(t, err)

	assert.Equal(t, 0.0, shape.StdDev)
	assert.Equal(t, 0.0, shape.Skewness)
	assert.False(t, shape.IsNormal)
	assert.Equal(t, 0, shape.Outliers)
}

func TestDescribeEmpty(t *testing.T) {
	_, err := Describe(nil)
	assert.ErrorIs(t, err, stats.ErrEmptyInput)
}
