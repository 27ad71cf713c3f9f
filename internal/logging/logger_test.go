package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "json", Level: slog.LevelInfo, Writer: &buf})

	logger.Debug("hidden")
	logger.Info("visible", "dsn", "AC000W123")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "AC000W123", record["dsn"])
	assert.Equal(t, ServiceName, record["service"])
	assert.Contains(t, record, "version")
	assert.Contains(t, record, "timestamp")
	assert.NotContains(t, record, "time")
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Format: "text", Level: slog.LevelDebug, Writer: &buf})

	logger.Debug("polling", "interval", "60s")

	out := buf.String()
	assert.Contains(t, out, "msg=polling")
	assert.Contains(t, out, "service=culligan")
	assert.Contains(t, out, "timestamp=")
}
