// Package config loads the runtime configuration of the browser.
//
// YAML example:
//
//	address: ":8080"
//	backend: "aws"          # "aws" or "minio"
//	region: "us-east-1"
//	endpoint: ""            # optional S3-compatible endpoint
//	sessionKey: ""          # 32 bytes; generated per process when empty
//	log:
//	  level: "info"
//	  format: "text"        # "text" or "json"
//	tracing:
//	  enabled: false
//	  endpoint: "localhost:4318"
//	  sampleRatio: 1.0
//
// Environment overrides:
//
//	S3BROWSER_CONFIG            path to the YAML file (default ./config.yaml when present)
//	S3BROWSER_ADDR              Address
//	S3BROWSER_BACKEND           Backend
//	S3BROWSER_REGION            Region
//	S3BROWSER_ENDPOINT          Endpoint
//	S3BROWSER_SESSION_KEY       SessionKey
//	S3BROWSER_LOG_LEVEL         Log.Level
//	S3BROWSER_LOG_FORMAT        Log.Format
//	S3BROWSER_TRACING_ENDPOINT  Tracing.Endpoint (also enables tracing)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	BackendAWS   = "aws"
	BackendMinio = "minio"

	DefaultAddress = ":8080"
	DefaultRegion  = "us-east-1"
)

// Config holds runtime configuration.
type Config struct {
	Address    string        `yaml:"address"`
	Backend    string        `yaml:"backend"`
	Region     string        `yaml:"region"`
	Endpoint   string        `yaml:"endpoint"`
	SessionKey string        `yaml:"sessionKey"`
	Log        LogConfig     `yaml:"log"`
	Tracing    TracingConfig `yaml:"tracing"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig controls OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sampleRatio"`
	ServiceName string  `yaml:"serviceName,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Address: DefaultAddress,
		Backend: BackendAWS,
		Region:  DefaultRegion,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			SampleRatio: 1.0,
			ServiceName: "s3-browser",
		},
	}
}

// Load reads the YAML file (if any) and applies environment overrides.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv("S3BROWSER_CONFIG")
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No file, defaults + env only.
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("S3BROWSER_ADDR"); v != "" {
		c.Address = v
	}
	if v := os.Getenv("S3BROWSER_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("S3BROWSER_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("S3BROWSER_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("S3BROWSER_SESSION_KEY"); v != "" {
		c.SessionKey = v
	}
	if v := os.Getenv("S3BROWSER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("S3BROWSER_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("S3BROWSER_TRACING_ENDPOINT"); v != "" {
		c.Tracing.Enabled = true
		c.Tracing.Endpoint = v
	}
}

// Validate checks that the configuration can be used to start the server.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendAWS, BackendMinio:
	default:
		return fmt.Errorf("unknown backend %q (want %q or %q)", c.Backend, BackendAWS, BackendMinio)
	}
	if strings.TrimSpace(c.Region) == "" {
		return errors.New("region must not be empty")
	}
	if c.SessionKey != "" && len(c.SessionKey) != 32 {
		return fmt.Errorf("session key must be 32 bytes, got %d", len(c.SessionKey))
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio %v out of range [0,1]", c.Tracing.SampleRatio)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}
