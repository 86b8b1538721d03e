package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/samber/oops"
)

var serverFlags = []string{"-a", "-m", "-d", "-s", "-rs", "-t", "-r", "-u", "-p", "-b", "-g", "-e", "-pub", "-n", "-tmp", "-l"}

// parseFlags overlays command-line flags:
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address
//	-d string   database DSN
//	-s string   access token secret
//	-rs string  refresh token secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-u, -p      S3 root user and password
//	-b, -g, -e  S3 bucket, region, base endpoint
//	-pub string public URL base of stored media
//	-n int      upload retries
//	-tmp string upload staging directory
//	-l string   log level
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port to serve metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.AccessTokenSecret, "s", config.AccessTokenSecret, "access token secret")
	fs.StringVar(&config.RefreshTokenSecret, "rs", config.RefreshTokenSecret, "refresh token secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicURL, "pub", config.S3PublicURL, "public URL base of stored media")
	fs.Uint64Var(&config.UploadRetries, "n", config.UploadRetries, "upload retries")
	fs.StringVar(&config.UploadTempDir, "tmp", config.UploadTempDir, "upload staging directory")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "parse flags").Wrap(err)
	}

	// minute-granular flags apply only when given
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		}
	})
	return nil
}
