package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func TestSetupLoggerHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupLogger(&config.Config{LogLevel: "warn"}, log.ComponentWorker, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component=worker")
	assert.Equal(t, log.ComponentWorker, logger.Component())
}
