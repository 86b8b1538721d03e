package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"database_dsn":                    "sqlite:ak.db",
		"access_token_secret":             "a-secret",
		"refresh_token_secret":            "r-secret",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": 180000000000,
		"s3_bucket":                       "bucket",
		"s3_public_url":                   "https://cdn.example.com",
		"upload_retries":                  0,
		"argon2_memory_kib":               19456,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "sqlite:ak.db", cfg.DatabaseDSN)
		assert.Equal(t, "a-secret", cfg.AccessTokenSecret)
		assert.Equal(t, "r-secret", cfg.RefreshTokenSecret)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 3*time.Minute, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "https://cdn.example.com", cfg.S3PublicURL)
		assert.Zero(t, cfg.UploadRetries, "explicit zero retries must apply")
		assert.EqualValues(t, 19456, cfg.Argon2Memory)

		// keys absent from the file keep their defaults
		assert.Equal(t, "us-east-1", cfg.S3Region)
		assert.EqualValues(t, 4, cfg.Argon2Threads)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		require.NoError(t, parseJson(cfg))
		assert.Equal(t, want, *cfg)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-c", bad}
		require.Error(t, parseJson(&Config{}))
	})

	t.Run("missing file", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Error(t, parseJson(&Config{}))
	})
}
