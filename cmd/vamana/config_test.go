package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vamana"
	"github.com/hupe1980/vamana/blobstore"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, ValidateConfig(&cfg))

	v, opts, err := cfg.BuildOptions()
	require.NoError(t, err)
	assert.Equal(t, vamana.VariantVamana, v)
	assert.Equal(t, vamana.DefaultBuildOptions().Alpha, opts.Alpha)
	assert.Equal(t, vamana.EntryMedoid, opts.Entry)
	assert.True(t, cfg.Data.AllowDuplicates)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "vamana.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, `
store: s3://graphs/prod
compression: zstd
timeout: 30s
log:
  format: json
build:
  variant: stitched
  r: 12
  sub_r: 6
search:
  k: 5
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "s3://graphs/prod", cfg.Store)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stitched", cfg.Build.Variant)
	assert.Equal(t, 12, cfg.Build.R)
	assert.Equal(t, 6, cfg.Build.SubR)
	assert.Equal(t, 5, cfg.Search.K)

	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultConfig().Build.L, cfg.Build.L)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_Env(t *testing.T) {
	path := writeConfig(t, "build:\n  r: 12\n")

	t.Setenv("VAMANA_BUILD_R", "7")
	t.Setenv("VAMANA_STORE", "/data/graphs")
	t.Setenv("VAMANA_LOG_LEVEL", "debug")
	t.Setenv("VAMANA_MINIO_SECURE", "true")
	t.Setenv("VAMANA_TIMEOUT", "1m")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Build.R)
	assert.Equal(t, "/data/graphs", cfg.Store)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.MinIO.Secure)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "build: [\n"))
		assert.Error(t, err)
	})

	t.Run("malformed env", func(t *testing.T) {
		t.Setenv("VAMANA_BUILD_R", "many")

		_, err := LoadConfig("")
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"log format", func(c *Config) { c.Log.Format = "console" }, ErrInvalidLogFormat},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, ErrInvalidLogLevel},
		{"graph", func(c *Config) { c.Graph = "" }, ErrMissingGraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, ValidateConfig(&cfg), tt.want)
		})
	}

	t.Run("compression", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Compression = "gzip"
		assert.Error(t, ValidateConfig(&cfg))
	})
}

func TestConfig_BuildOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Build.Variant = "stitched"
	cfg.Build.Entry = "random"
	cfg.Build.Alpha = 1.5
	cfg.Build.SubL = 20

	v, opts, err := cfg.BuildOptions()
	require.NoError(t, err)
	assert.Equal(t, vamana.VariantStitched, v)
	assert.Equal(t, vamana.EntryRandom, opts.Entry)
	assert.Equal(t, 1.5, opts.Alpha)
	assert.Equal(t, 20, opts.SubL)

	cfg.Build.Entry = "center"
	_, _, err = cfg.BuildOptions()
	assert.Error(t, err)

	cfg.Build.Entry = "medoid"
	cfg.Build.Variant = "hnsw"
	_, _, err = cfg.BuildOptions()
	assert.ErrorIs(t, err, vamana.ErrInvalidArgument)
}

func TestConfig_Logger(t *testing.T) {
	for _, format := range []string{"text", "json", "none"} {
		cfg := DefaultConfig()
		cfg.Log.Format = format

		l, err := cfg.Logger()
		require.NoError(t, err)
		assert.NotNil(t, l)
	}
}

func TestParseStoreLocation(t *testing.T) {
	tests := []struct {
		in   string
		want storeLocation
	}{
		{"./graphs", storeLocation{Scheme: "file", Path: "./graphs"}},
		{"file:///var/lib/vamana", storeLocation{Scheme: "file", Path: "/var/lib/vamana"}},
		{"s3://bucket", storeLocation{Scheme: "s3", Bucket: "bucket"}},
		{"s3://bucket/graphs/v1/", storeLocation{Scheme: "s3", Bucket: "bucket", Prefix: "graphs/v1"}},
		{"minio://localhost:9000/bucket", storeLocation{Scheme: "minio", Endpoint: "localhost:9000", Bucket: "bucket"}},
		{"minio://localhost:9000/bucket/graphs", storeLocation{Scheme: "minio", Endpoint: "localhost:9000", Bucket: "bucket", Prefix: "graphs"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseStoreLocation(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"", "s3://", "minio://localhost:9000", "minio://localhost:9000/", "gs://bucket"} {
		t.Run("invalid "+in, func(t *testing.T) {
			_, err := parseStoreLocation(in)
			assert.Error(t, err)
		})
	}
}

func TestOpenStore_Local(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store = t.TempDir()

	store, err := openStore(context.Background(), &cfg)
	require.NoError(t, err)
	assert.IsType(t, &blobstore.LocalStore{}, store)
}
