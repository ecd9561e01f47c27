package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochart/adapters/memory"
	"autochart/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			TypeSampleSize: 50,
			MaxCharts:      4,
			MaxUploadBytes: 1024,
			HistogramBins:  5,
			TopN:           10,
		},
	}
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestBuildWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	c, err := New(testConfig())
	require.NoError(t, err)

	require.NoError(t, c.InitWithDatabase(ctx))
	assert.Nil(t, c.DB)
	assert.IsType(t, &memory.DashboardRepository{}, c.DashboardRepo)

	svc, err := c.Build(ctx)
	require.NoError(t, err)
	assert.True(t, svc.Snapshot().Dataset.IsEmpty())
	assert.NoError(t, c.Shutdown(ctx))
}
