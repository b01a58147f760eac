// Package config loads service settings from defaults, an optional YAML file
// and the environment, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvConfigFile        = "SALARY_CONFIG"
	EnvHTTPAddr          = "HTTP_ADDR"
	EnvPredictionBaseURL = "PREDICTION_BASE_URL"
	EnvPredictionTimeout = "PREDICTION_TIMEOUT"
	EnvSessionIdleTTL    = "SESSION_IDLE_TTL"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogDevelopment    = "LOG_DEVELOPMENT"
	EnvOTelEnabled       = "OTEL_ENABLED"
	EnvOTelServiceName   = "OTEL_SERVICE_NAME"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Prediction PredictionConfig `yaml:"prediction"`
	Session    SessionConfig    `yaml:"session"`
	Log        LogConfig        `yaml:"log"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

type HTTPConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PredictionConfig points at the external prediction service.
type PredictionConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	IdleTTL    time.Duration `yaml:"idle_ttl"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// TelemetryConfig toggles the OTLP exporters. Exporter endpoints come from
// the standard OTEL_EXPORTER_OTLP_* variables.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Prediction: PredictionConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			CookieName: "salary_session",
			IdleTTL:    30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "salary-predictor",
		},
	}
}

// Load builds the configuration. path names a YAML file; when empty the
// SALARY_CONFIG variable is consulted, and no file at all is fine.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	if v, ok := lookup(EnvHTTPAddr); ok {
		c.HTTP.Addr = v
	}
	if v, ok := lookup(EnvPredictionBaseURL); ok {
		c.Prediction.BaseURL = v
	}
	if v, ok := lookup(EnvPredictionTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvPredictionTimeout, err))
		}
		c.Prediction.Timeout = d
	}
	if v, ok := lookup(EnvSessionIdleTTL); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSessionIdleTTL, err))
		}
		c.Session.IdleTTL = d
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvLogDevelopment); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvLogDevelopment, err))
		}
		c.Log.Development = b
	}
	if v, ok := lookup(EnvOTelEnabled); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvOTelEnabled, err))
		}
		c.Telemetry.Enabled = b
	}
	if v, ok := lookup(EnvOTelServiceName); ok && v != "" {
		c.Telemetry.ServiceName = v
	}

	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr must not be empty"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}

	if u, err := url.Parse(c.Prediction.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("prediction.base_url: %w", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("prediction.base_url %q must be an absolute http(s) URL", c.Prediction.BaseURL))
	}
	if c.Prediction.Timeout <= 0 {
		errs = append(errs, errors.New("prediction.timeout must be positive"))
	}

	if strings.TrimSpace(c.Session.CookieName) == "" {
		errs = append(errs, errors.New("session.cookie_name must not be empty"))
	}
	if c.Session.IdleTTL <= 0 {
		errs = append(errs, errors.New("session.idle_ttl must be positive"))
	}

	return errors.Join(errs...)
}
