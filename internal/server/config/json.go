package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/accountkeeper/internal/flagx"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
	"github.com/samber/oops"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "15m" style strings or integer nanoseconds. Absent keys leave the current
// value untouched.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	MetricsAddr                  string         `json:"metrics_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	AccessTokenSecret            string         `json:"access_token_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenSecret           string         `json:"refresh_token_secret"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3PublicURL                  string         `json:"s3_public_url"`
	UploadRetries                *uint64        `json:"upload_retries"`
	UploadTempDir                string         `json:"upload_temp_dir"`
	Argon2Time                   uint32         `json:"argon2_time"`
	Argon2Memory                 uint32         `json:"argon2_memory_kib"`
	Argon2Threads                uint8          `json:"argon2_threads"`
	LogLevel                     string         `json:"log_level"`
	LogFormat                    string         `json:"log_format"`
}

// parseJson loads the file named by -c/-config, if any, onto config.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("path", jsonConfigFile).Wrap(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return oops.Code("CONFIG_INVALID").With("path", jsonConfigFile).Wrap(err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicURL, c.S3PublicURL)
	setString(&config.UploadTempDir, c.UploadTempDir)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.UploadRetries != nil {
		config.UploadRetries = *c.UploadRetries
	}
	if c.Argon2Time > 0 {
		config.Argon2Time = c.Argon2Time
	}
	if c.Argon2Memory > 0 {
		config.Argon2Memory = c.Argon2Memory
	}
	if c.Argon2Threads > 0 {
		config.Argon2Threads = c.Argon2Threads
	}
}
