package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	for i, name := range []string{"error", "WARN", " Info ", "debug", "TRACE"} {
		level, err := ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, LogLevel(i), level)
	}
	_, err := ParseLogLevel("verbose")
	assert.Error(t, err)
	assert.Equal(t, "LogLevel(9)", LogLevel(9).String())
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogLevelWarn)
	logger.SetOutput(log.New(&buf, "", 0))

	logger.Info("[Test] hidden")
	logger.Warn("[Test] shown %d", 1)
	assert.Equal(t, "[WARN] [Test] shown 1\n", buf.String())

	buf.Reset()
	logger.SetLevel(LogLevelTrace)
	logger.Trace("[Test] deep")
	assert.Equal(t, "[TRACE] [Test] deep\n", buf.String())
	assert.True(t, logger.Enabled(LogLevelDebug))
}
