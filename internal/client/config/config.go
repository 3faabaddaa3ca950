package config

import (
	"errors"
	"time"
)

var (
	ErrEmptyServerURL         = errors.New("server base url must not be empty")
	ErrInvalidResponseTimeout = errors.New("response timeout must be positive")
)

// Config holds runtime settings for the PrivScan CLI.
//
// Fields:
//   - ServerBaseURL: scheme://host:port of the upload server.
//   - EndpointPath: route joined onto ServerBaseURL.
//   - ResponseTimeout: how long to wait for the server's response.
//   - SourcePath: local file to upload.
//   - Filename: name sent in X-Filename; empty means the base name of SourcePath.
//   - Verbose: log transfer progress at debug level.
type Config struct {
	ServerBaseURL   string
	EndpointPath    string
	ResponseTimeout time.Duration
	SourcePath      string
	Filename        string
	Verbose         bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:65432"
	c.EndpointPath = "/scan"
	c.ResponseTimeout = 300 * time.Second
}

// Validate checks the settings that do not depend on the source file.
func (c *Config) Validate() error {
	if c.ServerBaseURL == "" {
		return ErrEmptyServerURL
	}
	if c.ResponseTimeout <= 0 {
		return ErrInvalidResponseTimeout
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
