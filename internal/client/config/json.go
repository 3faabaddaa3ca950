package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/privscan/internal/flagx"
	"github.com/dmitrijs2005/privscan/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify the timeout either as a
// string like "30s" or as integer nanoseconds. Absent keys leave the current
// value untouched.
type JsonConfig struct {
	ServerBaseURL   *string         `json:"server_base_url"`
	EndpointPath    *string         `json:"endpoint_path"`
	ResponseTimeout *timex.Duration `json:"response_timeout"`
	SourcePath      *string         `json:"source_path"`
	Filename        *string         `json:"filename"`
	Verbose         *bool           `json:"verbose"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from -c or -config; without either flag no JSON is
// loaded. Read or unmarshal errors panic.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != nil {
		cfg.ServerBaseURL = *jc.ServerBaseURL
	}
	if jc.EndpointPath != nil {
		cfg.EndpointPath = *jc.EndpointPath
	}
	if jc.ResponseTimeout != nil {
		cfg.ResponseTimeout = jc.ResponseTimeout.Duration
	}
	if jc.SourcePath != nil {
		cfg.SourcePath = *jc.SourcePath
	}
	if jc.Filename != nil {
		cfg.Filename = *jc.Filename
	}
	if jc.Verbose != nil {
		cfg.Verbose = *jc.Verbose
	}
}
