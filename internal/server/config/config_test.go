package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":65432", c.EndpointAddr)
	assert.Equal(t, "/scan", c.EndpointPath)
	assert.Equal(t, "uploads", c.UploadRoot)
	assert.Equal(t, int64(500*1024*1024), c.MaxRequestBytes)
	assert.Equal(t, 10*time.Second, c.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, c.ShutdownTimeout)
	assert.Empty(t, c.LogFile)
	assert.Empty(t, c.S3Bucket)
	assert.Equal(t, "us-east-1", c.S3Region)
	assert.Equal(t, "uploads/", c.S3Prefix)
	assert.False(t, c.MirrorEnabled())
	assert.NoError(t, c.Validate())
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *c)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "defaults ok", mutate: func(*Config) {}},
		{name: "zero max size", mutate: func(c *Config) { c.MaxRequestBytes = 0 }, want: ErrInvalidMaxRequestBytes},
		{name: "empty root", mutate: func(c *Config) { c.UploadRoot = "" }, want: ErrEmptyUploadRoot},
		{name: "relative path", mutate: func(c *Config) { c.EndpointPath = "scan" }, want: ErrInvalidEndpointPath},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.want == nil {
				assert.NoError(t, c.Validate())
				return
			}
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}

func TestMirrorEnabled(t *testing.T) {
	c := Config{S3Bucket: "vault"}
	assert.True(t, c.MirrorEnabled())
}
