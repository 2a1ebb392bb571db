package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/vamana"
	vamanaprom "github.com/hupe1980/vamana/metrics/prometheus"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	configPath string

	// flags receives flag values; overrides copies the ones set on the
	// command line into the effective config.
	flags     Config
	overrides map[string]func(dst *Config)

	cfg      Config
	logger   *vamana.Logger
	registry *prometheus.Registry
	metrics  vamana.MetricsCollector
}

// bind registers the flag named name in scope and returns the field it
// writes to. An empty scope marks a persistent flag.
func bind[V any](a *app, scope, name string, field func(*Config) *V) *V {
	a.overrides[scope+"."+name] = func(dst *Config) { *field(dst) = *field(&a.flags) }

	return field(&a.flags)
}

func newRootCmd() *cobra.Command {
	a := &app{
		flags:     DefaultConfig(),
		overrides: make(map[string]func(*Config)),
	}

	root := &cobra.Command{
		Use:   "vamana",
		Short: "Build and query Vamana proximity graphs",
		Long: `vamana builds Vamana, FilteredVamana and StitchedVamana graphs over
vector files, stores them in a local directory or an object store, and
measures search quality against exact ground truth.

Settings are read from built-in defaults, an optional YAML file (--config),
VAMANA_* environment variables and flags, later sources winning.

Examples:
  vamana build --base sift_base.fvecs --store ./graphs
  vamana build --base base.bin --format contest --variant stitched --store s3://bucket/graphs
  vamana search --base sift_base.fvecs --queries sift_query.fvecs --ground-truth sift_groundtruth.ivecs
  vamana stats --store ./graphs`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	def := a.flags
	pf := root.PersistentFlags()

	pf.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(bind(a, "", "store", func(c *Config) *string { return &c.Store }), "store", def.Store,
		"blob store: a directory, s3://bucket/prefix or minio://host:port/bucket/prefix")
	pf.StringVar(bind(a, "", "graph", func(c *Config) *string { return &c.Graph }), "graph", def.Graph, "graph blob name")
	pf.StringVar(bind(a, "", "compression", func(c *Config) *string { return &c.Compression }), "compression", def.Compression,
		"graph compression: none, lz4 or zstd")
	pf.Int64Var(bind(a, "", "seed", func(c *Config) *int64 { return &c.Seed }), "seed", def.Seed, "random seed")
	pf.StringVar(bind(a, "", "metrics-file", func(c *Config) *string { return &c.MetricsFile }), "metrics-file", def.MetricsFile,
		"write Prometheus metrics to this file on exit")
	pf.DurationVar(bind(a, "", "timeout", func(c *Config) *time.Duration { return &c.Timeout }), "timeout", def.Timeout,
		"abort after this duration (0 disables)")
	pf.StringVar(bind(a, "", "log-format", func(c *Config) *string { return &c.Log.Format }), "log-format", def.Log.Format,
		"log format: text, json or none")
	pf.StringVar(bind(a, "", "log-level", func(c *Config) *string { return &c.Log.Level }), "log-level", def.Log.Level,
		"log level: debug, info, warn or error")
	pf.StringVar(bind(a, "", "base", func(c *Config) *string { return &c.Data.Base }), "base", def.Data.Base, "base vector file")
	pf.StringVar(bind(a, "", "format", func(c *Config) *string { return &c.Data.Format }), "format", def.Data.Format,
		"input format: fvecs, ivecs, bvecs or contest (default: from extension)")
	pf.IntVar(bind(a, "", "dim", func(c *Config) *int { return &c.Data.Dim }), "dim", def.Data.Dim, "point dimension of contest files")
	pf.BoolVar(bind(a, "", "allow-duplicates", func(c *Config) *bool { return &c.Data.AllowDuplicates }), "allow-duplicates",
		def.Data.AllowDuplicates, "accept repeated points in the base file")

	root.AddCommand(newBuildCmd(a), newSearchCmd(a), newStatsCmd(a))

	return root
}

// setup resolves the effective config and the logging and metrics sinks.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	cmd.Flags().Visit(func(f *pflag.Flag) {
		if o, ok := a.overrides[cmd.Name()+"."+f.Name]; ok {
			o(&cfg)
		} else if o, ok := a.overrides["."+f.Name]; ok {
			o(&cfg)
		}
	})

	if err := ValidateConfig(&cfg); err != nil {
		return err
	}

	a.logger, err = cfg.Logger()
	if err != nil {
		return err
	}

	a.metrics = vamana.NoopMetricsCollector{}

	if cfg.MetricsFile != "" {
		a.registry = prometheus.NewRegistry()
		a.metrics = vamanaprom.NewCollector(a.registry)
	}

	a.cfg = cfg

	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.registry == nil {
		return nil
	}

	if err := prometheus.WriteToTextfile(a.cfg.MetricsFile, a.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}

	return nil
}

// context returns the command context bounded by the configured timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), a.cfg.Timeout)
	}

	return context.WithCancel(cmd.Context())
}

// indexOptions returns the options shared by every index the CLI creates.
func (a *app) indexOptions(labels []float32) []vamana.Option {
	opts := []vamana.Option{
		vamana.WithSeed(a.cfg.Seed),
		vamana.WithLogger(a.logger),
		vamana.WithMetricsCollector(a.metrics),
	}

	if labels != nil {
		opts = append(opts, vamana.WithFilters(labels))
	}

	if a.cfg.Data.AllowDuplicates {
		opts = append(opts, vamana.AllowDuplicates())
	}

	return opts
}
