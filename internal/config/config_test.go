package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autochart/internal"
	"autochart/internal/errors"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "UI_PORT", "DATABASE_URL", "LOG_LEVEL", "MAX_UPLOAD_MB", "CHART_TOP_N"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.GinMode)
	assert.Equal(t, "8081", cfg.UI.Port)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "default", cfg.Database.Dashboard)
	assert.Equal(t, 100, cfg.Engine.TypeSampleSize)
	assert.Equal(t, 12, cfg.Engine.MaxCharts)
	assert.Equal(t, int64(50*1024*1024), cfg.Engine.MaxUploadBytes)
	assert.Equal(t, 8, cfg.Engine.HistogramBins)
	assert.Equal(t, 20, cfg.Engine.TopN)
	assert.Equal(t, internal.LogLevelInfo, cfg.LogLevel)
	assert.False(t, cfg.Profiling.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("MAX_UPLOAD_MB", "5")
	t.Setenv("CHART_TOP_N", "not-a-number")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PPROF_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, int64(5*1024*1024), cfg.Engine.MaxUploadBytes)
	assert.Equal(t, 20, cfg.Engine.TopN, "unparsable values fall back to defaults")
	assert.Equal(t, internal.LogLevelDebug, cfg.LogLevel)
	assert.True(t, cfg.Profiling.Enabled)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"gin mode", "GIN_MODE", "verbose"},
		{"max charts", "MAX_CHARTS", "0"},
		{"histogram bins", "HISTOGRAM_BINS", "-1"},
		{"log level", "LOG_LEVEL", "LOUD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GIN_MODE", "debug")
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
