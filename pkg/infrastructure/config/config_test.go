package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Capabilities().Advanced)
	assert.Equal(t, 30, cfg.Forecast.DefaultHorizonDays)
	assert.Equal(t, 25, cfg.Forecast.Advanced.Changepoints)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "restock.yaml", `
forecast:
  advanced_enabled: false
  default_horizon_days: 14
  advanced:
    changepoints: 10
    changepoint_range: 0.9
server:
  addr: ":9000"
  read_timeout: 5s
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Capabilities().Advanced)
	assert.Equal(t, 14, cfg.Forecast.DefaultHorizonDays)
	assert.Equal(t, 10, cfg.Forecast.Advanced.Changepoints)
	assert.Equal(t, 0.9, cfg.Forecast.Advanced.ChangepointRange)
	// keys absent from the file keep their defaults
	assert.Equal(t, 0.05, cfg.Forecast.Advanced.ChangepointPriorScale)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Precedence(t *testing.T) {
	yamlPath := writeFile(t, "restock.yaml", "server:\n  addr: \":9000\"\nlog:\n  level: debug\n")
	envPath := writeFile(t, ".env", "RESTOCK_SERVER_ADDR=:7000\nRESTOCK_LOG_LEVEL=error\nRESTOCK_ADVANCED_ENABLED=false\n")

	t.Setenv("RESTOCK_LOG_LEVEL", "warn")

	cfg, err := Load(yamlPath, envPath)
	require.NoError(t, err)

	// .env beats the file, the real environment beats .env
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.False(t, cfg.Forecast.AdvancedEnabled)
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "does-not-exist.env"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Addr, cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "forecast: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := Load(writeFile(t, "range.yaml", "forecast:\n  advanced:\n    changepoint_range: 1.5\n"))
		assert.ErrorContains(t, err, "changepoint_range")
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("RESTOCK_DEFAULT_HORIZON_DAYS", "soon")
		_, err := Load("")
		assert.ErrorContains(t, err, "RESTOCK_DEFAULT_HORIZON_DAYS")
	})

	t.Run("unknown log format", func(t *testing.T) {
		t.Setenv("RESTOCK_LOG_FORMAT", "xml")
		_, err := Load("")
		assert.ErrorContains(t, err, "log.format")
	})

	t.Run("unknown trace exporter", func(t *testing.T) {
		t.Setenv("RESTOCK_TELEMETRY_TRACES", "jaeger")
		_, err := Load("")
		assert.ErrorContains(t, err, "telemetry.traces")
	})
}

func TestLoad_TelemetryOverrides(t *testing.T) {
	t.Setenv("RESTOCK_TELEMETRY_TRACES", "stdout")
	t.Setenv("RESTOCK_TELEMETRY_METRICS", "none")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stdout", cfg.Telemetry.Traces)
	assert.Equal(t, "none", cfg.Telemetry.Metrics)
	assert.Equal(t, "restock", cfg.Telemetry.ServiceName)
}

func TestWriteDefault_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "restock.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	assert.Error(t, WriteDefault(path), "existing config must not be overwritten")
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("dropped")
	logger.Warn("kept", "sku", "A-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "kept", record["msg"])
	assert.Equal(t, "A-1", record["sku"])
}
