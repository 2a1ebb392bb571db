package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vamana"
	"github.com/hupe1980/vamana/dataset"
	"github.com/hupe1980/vamana/graph"
)

// EnvPrefix is the prefix of environment variables read by the CLI.
const EnvPrefix = "VAMANA"

// Config validation errors
var (
	ErrInvalidLogFormat = errors.New("log format must be 'text', 'json' or 'none'")
	ErrInvalidLogLevel  = errors.New("log level must be debug, info, warn, or error")
	ErrMissingBase      = errors.New("base file is required")
	ErrMissingGraph     = errors.New("graph name cannot be empty")
	ErrInvalidK         = errors.New("k must be positive and not exceed L")
)

// Config holds every CLI setting. Values are layered: defaults, then the
// YAML file, then VAMANA_* environment variables, then flags.
type Config struct {
	Store       string        `yaml:"store" envconfig:"STORE"`
	Graph       string        `yaml:"graph" envconfig:"GRAPH"`
	Compression string        `yaml:"compression" envconfig:"COMPRESSION"`
	Seed        int64         `yaml:"seed" envconfig:"SEED"`
	MetricsFile string        `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`

	Log    LogConfig    `yaml:"log" envconfig:"LOG"`
	Data   DataConfig   `yaml:"data" envconfig:"DATA"`
	Build  BuildConfig  `yaml:"build" envconfig:"BUILD"`
	Search SearchConfig `yaml:"search" envconfig:"SEARCH"`
	S3     S3Config     `yaml:"s3" envconfig:"S3"`
	MinIO  MinIOConfig  `yaml:"minio" envconfig:"MINIO"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Format string `yaml:"format" envconfig:"FORMAT"`
	Level  string `yaml:"level" envconfig:"LEVEL"`
}

// DataConfig names the input files.
type DataConfig struct {
	Base        string `yaml:"base" envconfig:"BASE"`
	Queries     string `yaml:"queries" envconfig:"QUERIES"`
	GroundTruth string `yaml:"ground_truth" envconfig:"GROUND_TRUTH"`
	// Format is fvecs, ivecs, bvecs or contest. Empty infers it from the
	// file extension.
	Format string `yaml:"format" envconfig:"FORMAT"`
	// Dim is the point dimension of contest files.
	Dim int `yaml:"dim" envconfig:"DIM"`
	// AllowDuplicates accepts base files with repeated points.
	AllowDuplicates bool `yaml:"allow_duplicates" envconfig:"ALLOW_DUPLICATES"`
}

// BuildConfig mirrors vamana.BuildOptions.
type BuildConfig struct {
	Variant    string  `yaml:"variant" envconfig:"VARIANT"`
	Alpha      float64 `yaml:"alpha" envconfig:"ALPHA"`
	L          int     `yaml:"l" envconfig:"L"`
	R          int     `yaml:"r" envconfig:"R"`
	Regularity int     `yaml:"regularity" envconfig:"REGULARITY"`
	Entry      string  `yaml:"entry" envconfig:"ENTRY"`
	Tau        int     `yaml:"tau" envconfig:"TAU"`
	SubL       int     `yaml:"sub_l" envconfig:"SUB_L"`
	SubR       int     `yaml:"sub_r" envconfig:"SUB_R"`
	StitchedR  int     `yaml:"stitched_r" envconfig:"STITCHED_R"`
	Workers    int     `yaml:"workers" envconfig:"WORKERS"`
}

// SearchConfig controls query evaluation.
type SearchConfig struct {
	K       int `yaml:"k" envconfig:"K"`
	L       int `yaml:"l" envconfig:"L"`
	Workers int `yaml:"workers" envconfig:"WORKERS"`
}

// S3Config configures s3:// stores.
type S3Config struct {
	Region   string `yaml:"region" envconfig:"REGION"`
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`
}

// MinIOConfig configures minio:// stores.
type MinIOConfig struct {
	AccessKey string `yaml:"access_key" envconfig:"ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" envconfig:"SECRET_KEY"`
	Secure    bool   `yaml:"secure" envconfig:"SECURE"`
	Region    string `yaml:"region" envconfig:"REGION"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	b := vamana.DefaultBuildOptions()

	return Config{
		Store:       ".",
		Graph:       "graph.vgr",
		Compression: graph.CompressionNone.String(),
		Seed:        1,
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Data: DataConfig{
			Dim:             dataset.DefaultContestDim,
			AllowDuplicates: true,
		},
		Build: BuildConfig{
			Variant:   vamana.VariantVamana.String(),
			Alpha:     b.Alpha,
			L:         b.L,
			R:         b.R,
			Entry:     "medoid",
			Tau:       b.Tau,
			SubL:      b.SubL,
			SubR:      b.SubR,
			StitchedR: b.StitchedR,
			Workers:   b.Workers,
		},
		Search: SearchConfig{
			K:       10,
			L:       100,
			Workers: 1,
		},
	}
}

// LoadConfig layers the YAML file at path (if any) and the environment over
// the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	// Fields without a matching variable keep their value.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	return cfg, nil
}

// ValidateConfig checks the settings shared by every command.
func ValidateConfig(cfg *Config) error {
	switch cfg.Log.Format {
	case "text", "json", "none":
	default:
		return ErrInvalidLogFormat
	}

	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return err
	}

	if cfg.Graph == "" {
		return ErrMissingGraph
	}

	if _, err := graph.ParseCompression(cfg.Compression); err != nil {
		return err
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, ErrInvalidLogLevel
	}
}

// Logger builds the index logger described by the config.
func (c *Config) Logger() (*vamana.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	switch c.Log.Format {
	case "json":
		return vamana.NewJSONLogger(level), nil
	case "text":
		return vamana.NewTextLogger(level), nil
	case "none":
		return vamana.NoopLogger(), nil
	default:
		return nil, ErrInvalidLogFormat
	}
}

// BuildOptions converts the build settings.
func (c *Config) BuildOptions() (vamana.Variant, vamana.BuildOptions, error) {
	v, err := vamana.ParseVariant(c.Build.Variant)
	if err != nil {
		return 0, vamana.BuildOptions{}, err
	}

	opts := vamana.DefaultBuildOptions()
	opts.Alpha = c.Build.Alpha
	opts.L = c.Build.L
	opts.R = c.Build.R
	opts.Regularity = c.Build.Regularity
	opts.Tau = c.Build.Tau
	opts.SubL = c.Build.SubL
	opts.SubR = c.Build.SubR
	opts.StitchedR = c.Build.StitchedR
	opts.Workers = c.Build.Workers

	switch c.Build.Entry {
	case "medoid":
		opts.Entry = vamana.EntryMedoid
	case "random":
		opts.Entry = vamana.EntryRandom
	default:
		return 0, opts, fmt.Errorf("entry must be 'medoid' or 'random', got %q", c.Build.Entry)
	}

	return v, opts, nil
}
