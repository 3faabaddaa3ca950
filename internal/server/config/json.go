package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/privscan/internal/flagx"
	"github.com/dmitrijs2005/privscan/internal/timex"
)

// JsonConfig is a DTO used only for JSON unmarshalling. Pointer fields tell
// "absent" apart from zero values, so a partial file only overrides the keys
// it names.
type JsonConfig struct {
	EndpointAddr      *string         `json:"endpoint_addr"`
	EndpointPath      *string         `json:"endpoint_path"`
	UploadRoot        *string         `json:"upload_root"`
	MaxRequestBytes   *int64          `json:"max_request_bytes"`
	ReadHeaderTimeout *timex.Duration `json:"read_header_timeout"`
	ShutdownTimeout   *timex.Duration `json:"shutdown_timeout"`
	LogFile           *string         `json:"log_file"`
	S3RootUser        *string         `json:"s3_root_user"`
	S3RootPassword    *string         `json:"s3_root_password"`
	S3Bucket          *string         `json:"s3_bucket"`
	S3Region          *string         `json:"s3_region"`
	S3BaseEndpoint    *string         `json:"s3_base_endpoint"`
	S3Prefix          *string         `json:"s3_prefix"`
}

// parseJson overlays Config with values from the JSON file named by -c or
// -config. Without either flag nothing is loaded. Read or decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.EndpointPath, c.EndpointPath)
	setString(&config.UploadRoot, c.UploadRoot)
	if c.MaxRequestBytes != nil {
		config.MaxRequestBytes = *c.MaxRequestBytes
	}
	if c.ReadHeaderTimeout != nil {
		config.ReadHeaderTimeout = c.ReadHeaderTimeout.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.LogFile, c.LogFile)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3Prefix, c.S3Prefix)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
