// Package config loads runtime configuration for the PrivScan CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-u string   server base URL, e.g. http://127.0.0.1:65432
//	-p string   endpoint path, e.g. /scan
//	-t int      response timeout (seconds)
//	-f string   file to upload
//	-n string   filename sent to the server
//	-v          verbose logging
//
// # JSON schema
//
// The JSON loader uses timex.Duration for the timeout, so values can be either
// strings like "300s" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:65432",
//	  "endpoint_path": "/scan",
//	  "response_timeout": "300s",
//	  "source_path": "report.pdf",
//	  "filename": "",
//	  "verbose": false
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
