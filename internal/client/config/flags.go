package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/privscan/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-u string   server base URL (default from Config)
//	-p string   endpoint path (default from Config)
//	-t int      response timeout in seconds (default from Config)
//	-f string   file to upload
//	-n string   filename sent to the server
//	-v          verbose logging
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-p", "-t", "-f", "-n", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerBaseURL, "u", cfg.ServerBaseURL, "server base URL")
	fs.StringVar(&cfg.EndpointPath, "p", cfg.EndpointPath, "upload endpoint path")
	responseTimeout := fs.Int("t", int(cfg.ResponseTimeout.Seconds()), "response timeout (in seconds)")
	fs.StringVar(&cfg.SourcePath, "f", cfg.SourcePath, "file to upload")
	fs.StringVar(&cfg.Filename, "n", cfg.Filename, "filename sent to the server")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.ResponseTimeout = time.Duration(*responseTimeout) * time.Second
		}
	})
}
