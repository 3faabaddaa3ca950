// Package config handles configuration for the upload server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/privscan/internal/common"
)

var (
	ErrInvalidMaxRequestBytes = errors.New("max request size must be greater than 0")
	ErrEmptyUploadRoot        = errors.New("upload root must be set")
	ErrInvalidEndpointPath    = errors.New("endpoint path must start with '/'")
)

// Config holds runtime settings for the PrivScan upload server.
//
// Fields:
//   - EndpointAddr: bind address for the HTTP listener.
//   - EndpointPath: route accepting uploads (POST).
//   - UploadRoot: directory every artifact is written into; created at startup.
//   - MaxRequestBytes: upper bound for one request body.
//   - ReadHeaderTimeout / ShutdownTimeout: HTTP server timings.
//   - LogFile: optional rotating log file, in addition to stdout.
//   - S3*: optional artifact mirror; disabled while S3Bucket is empty.
type Config struct {
	EndpointAddr      string
	EndpointPath      string
	UploadRoot        string
	MaxRequestBytes   int64
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	LogFile           string
	S3RootUser        string
	S3RootPassword    string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
	S3Prefix          string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":65432"
	c.EndpointPath = common.DefaultEndpointPath
	c.UploadRoot = "uploads"
	c.MaxRequestBytes = 500 * 1024 * 1024
	c.ReadHeaderTimeout = 10 * time.Second
	c.ShutdownTimeout = 15 * time.Second
	c.LogFile = ""
	c.S3RootUser = ""
	c.S3RootPassword = ""
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = ""
	c.S3Prefix = "uploads/"
}

// MirrorEnabled reports whether finalized artifacts are copied to S3.
func (c *Config) MirrorEnabled() bool {
	return c.S3Bucket != ""
}

// Validate checks the constraints the server relies on at startup.
func (c *Config) Validate() error {
	if c.MaxRequestBytes <= 0 {
		return ErrInvalidMaxRequestBytes
	}
	if c.UploadRoot == "" {
		return ErrEmptyUploadRoot
	}
	if !strings.HasPrefix(c.EndpointPath, "/") {
		return ErrInvalidEndpointPath
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
