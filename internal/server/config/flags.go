package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/privscan/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   bind address (e.g., ":65432")
//	-path string upload route (e.g., "/scan")
//	-r string   upload root directory
//	-m int      maximum request size, MiB
//	-s int      shutdown timeout, seconds
//	-l string   log file (rotated), empty for stdout only
//	-u string   S3 root user
//	-k string   S3 root password
//	-b string   S3 bucket; empty disables the mirror
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x string   S3 key prefix
//
// os.Args is filtered through flagx.FilterArgs first so flags owned by other
// loaders (-c/-config) do not fail the parse.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-path", "-r", "-m", "-s", "-l", "-u", "-k", "-b", "-g", "-e", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.EndpointPath, "path", config.EndpointPath, "upload endpoint path")
	fs.StringVar(&config.UploadRoot, "r", config.UploadRoot, "upload root directory")

	maxRequestMiB := fs.Int64("m", config.MaxRequestBytes/(1024*1024), "max request size (in MiB)")
	shutdownTimeout := fs.Int("s", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")

	fs.StringVar(&config.LogFile, "l", config.LogFile, "log file")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "k", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3Prefix, "x", config.S3Prefix, "S3 key prefix")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// unit-converted flags only apply when given, so byte-exact JSON values survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			config.MaxRequestBytes = *maxRequestMiB * 1024 * 1024
		case "s":
			config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
		}
	})
}
