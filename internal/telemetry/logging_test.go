package telemetry

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("chatty"))
}

func TestNewLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "info", "json").Info("trace computed", "hops", 4)
	assert.Contains(t, buf.String(), `"hops":4`)

	buf.Reset()
	NewLogger(&buf, "info", "text").Info("trace computed", "hops", 4)
	assert.Contains(t, buf.String(), "hops=4")

	buf.Reset()
	NewLogger(&buf, "warn", "text").Info("suppressed")
	assert.Empty(t, buf.String())
}

func TestInitMetrics_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		InitMetrics()
		InitMetrics()
	})
}
