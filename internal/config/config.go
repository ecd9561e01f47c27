package config

import (
	"fmt"
	"os"
	"strconv"

	"autochart/internal"
	"autochart/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	UI        UIConfig
	Database  DatabaseConfig
	Engine    EngineConfig
	Profiling ProfilingConfig
	LogLevel  internal.LogLevel
}

// ServerConfig holds API server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// UIConfig holds report app settings
type UIConfig struct {
	Port string
}

// DatabaseConfig holds database connection settings. An empty URL selects the
// in-memory dashboard repository.
type DatabaseConfig struct {
	URL       string
	Dashboard string
}

// EngineConfig holds data processing limits
type EngineConfig struct {
	TypeSampleSize int
	MaxCharts      int
	MaxUploadBytes int64
	HistogramBins  int
	TopN           int
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		UI:        *loadUIConfig(),
		Database:  *loadDatabaseConfig(),
		Engine:    *loadEngineConfig(),
		Profiling: *loadProfilingConfig(),
	}

	level, err := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to load log level")
	}
	config.LogLevel = level

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadUIConfig() *UIConfig {
	return &UIConfig{
		Port: getEnvOrDefault("UI_PORT", "8081"),
	}
}

func loadDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		URL:       getEnvOrDefault("DATABASE_URL", ""),
		Dashboard: getEnvOrDefault("DASHBOARD_NAME", "default"),
	}
}

func loadEngineConfig() *EngineConfig {
	return &EngineConfig{
		TypeSampleSize: getEnvIntOrDefault("TYPE_SAMPLE_SIZE", 100),
		MaxCharts:      getEnvIntOrDefault("MAX_CHARTS", 12),
		MaxUploadBytes: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)) * 1024 * 1024,
		HistogramBins:  getEnvIntOrDefault("HISTOGRAM_BINS", 8),
		TopN:           getEnvIntOrDefault("CHART_TOP_N", 20),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE must be debug, release or test, got %q", config.Server.GinMode))
	}
	if config.Engine.TypeSampleSize < 0 {
		return errors.ConfigInvalid("TYPE_SAMPLE_SIZE cannot be negative")
	}
	if config.Engine.MaxCharts <= 0 {
		return errors.ConfigInvalid("MAX_CHARTS must be positive")
	}
	if config.Engine.MaxUploadBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.Engine.HistogramBins <= 0 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be positive")
	}
	if config.Engine.TopN <= 0 {
		return errors.ConfigInvalid("CHART_TOP_N must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
