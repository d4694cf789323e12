// Package config loads runtime settings from a YAML file, optional .env
// files and RESTOCK_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/restock/pkg/domain/services/forecast"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RESTOCK_"

type Config struct {
	Forecast  ForecastConfig  `yaml:"forecast"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ForecastConfig struct {
	// AdvancedEnabled is the advanced capability handed to the forecast engine
	AdvancedEnabled    bool                     `yaml:"advanced_enabled"`
	DefaultHorizonDays int                      `yaml:"default_horizon_days"`
	Advanced           forecast.AdvancedOptions `yaml:"advanced"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name"`
	// Traces is none or stdout
	Traces string `yaml:"traces"`
	// Metrics is none or prometheus; prometheus serves on /metrics
	Metrics string `yaml:"metrics"`
}

// Default returns the configuration used when no file or override is given
func Default() *Config {
	return &Config{
		Forecast: ForecastConfig{
			AdvancedEnabled:    true,
			DefaultHorizonDays: forecast.DefaultHorizonDays,
			Advanced:           forecast.DefaultAdvancedOptions(),
		},
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "restock",
			Traces:      "none",
			Metrics:     "prometheus",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty), the given .env files (missing ones are ignored) and the
// process environment. Real environment variables win over .env values.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	dotenv, err := readDotEnv(envFiles)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readDotEnv(files []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read env file %s: %w", file, err)
		}
		for k, v := range values {
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
	}
	return merged, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, o := range []struct {
		key   string
		apply func(string) error
	}{
		{"ADVANCED_ENABLED", parseBool(&c.Forecast.AdvancedEnabled)},
		{"DEFAULT_HORIZON_DAYS", parseInt(&c.Forecast.DefaultHorizonDays)},
		{"CHANGEPOINTS", parseInt(&c.Forecast.Advanced.Changepoints)},
		{"CHANGEPOINT_RANGE", parseFloat(&c.Forecast.Advanced.ChangepointRange)},
		{"CHANGEPOINT_PRIOR_SCALE", parseFloat(&c.Forecast.Advanced.ChangepointPriorScale)},
		{"SEASONALITY_PRIOR_SCALE", parseFloat(&c.Forecast.Advanced.SeasonalityPriorScale)},
		{"SERVER_ADDR", setString(&c.Server.Addr)},
		{"LOG_LEVEL", setString(&c.Log.Level)},
		{"LOG_FORMAT", setString(&c.Log.Format)},
		{"TELEMETRY_TRACES", setString(&c.Telemetry.Traces)},
		{"TELEMETRY_METRICS", setString(&c.Telemetry.Metrics)},
	} {
		raw, ok := lookup(EnvPrefix + o.key)
		if !ok {
			continue
		}
		if err := o.apply(strings.TrimSpace(raw)); err != nil {
			return fmt.Errorf("invalid %s%s: %w", EnvPrefix, o.key, err)
		}
	}
	return nil
}

func parseBool(dst *bool) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func parseInt(dst *int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func parseFloat(dst *float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func setString(dst *string) func(string) error {
	return func(s string) error {
		*dst = s
		return nil
	}
}

// Validate rejects settings the planner cannot run with
func (c *Config) Validate() error {
	f := c.Forecast
	if f.DefaultHorizonDays < 1 || f.DefaultHorizonDays > forecast.MaxHorizonDays {
		return fmt.Errorf("forecast.default_horizon_days must be between 1 and %d, got %d", forecast.MaxHorizonDays, f.DefaultHorizonDays)
	}
	if f.Advanced.Changepoints < 1 {
		return fmt.Errorf("forecast.advanced.changepoints must be positive, got %d", f.Advanced.Changepoints)
	}
	if f.Advanced.ChangepointRange <= 0 || f.Advanced.ChangepointRange > 1 {
		return fmt.Errorf("forecast.advanced.changepoint_range must be in (0, 1], got %g", f.Advanced.ChangepointRange)
	}
	if f.Advanced.ChangepointPriorScale <= 0 {
		return fmt.Errorf("forecast.advanced.changepoint_prior_scale must be positive, got %g", f.Advanced.ChangepointPriorScale)
	}
	if f.Advanced.SeasonalityPriorScale <= 0 {
		return fmt.Errorf("forecast.advanced.seasonality_prior_scale must be positive, got %g", f.Advanced.SeasonalityPriorScale)
	}

	if c.Server.Addr == "" {
		return errors.New("server.addr cannot be empty")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	switch c.Telemetry.Traces {
	case "none", "stdout":
	default:
		return fmt.Errorf("telemetry.traces must be none or stdout, got %q", c.Telemetry.Traces)
	}
	switch c.Telemetry.Metrics {
	case "none", "prometheus":
	default:
		return fmt.Errorf("telemetry.metrics must be none or prometheus, got %q", c.Telemetry.Metrics)
	}
	return nil
}

// Capabilities returns the forecast capabilities this configuration enables
func (c *Config) Capabilities() forecast.Capabilities {
	return forecast.Capabilities{Advanced: c.Forecast.AdvancedEnabled}
}

// NewLogger builds a slog logger writing to w in the configured format and level
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}

// WriteDefault writes the default configuration as YAML to path, creating
// parent directories. An existing file is left untouched.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
