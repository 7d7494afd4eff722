package ods_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fivetwenty-io/ods-client/pkg/ods"
)

func TestSlogLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := ods.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	logger.Debug("hidden", nil)
	logger.Info("HTTP Request", map[string]interface{}{"method": "GET"})
	logger.Warn("slow", map[string]interface{}{"duration": "2s"})
	logger.Error("failed", nil)

	output := buf.String()
	assert.NotContains(t, output, "hidden")
	assert.Contains(t, output, `msg="HTTP Request" method=GET`)
	assert.Contains(t, output, "level=WARN msg=slow duration=2s")
	assert.Contains(t, output, "level=ERROR msg=failed")
}

func TestNewSlogLogger_NilUsesDefault(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, ods.NewSlogLogger(nil))
}
