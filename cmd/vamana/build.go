package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vamana"
	"github.com/hupe1980/vamana/distance"
	"github.com/hupe1980/vamana/graph"
)

func newBuildCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a graph and write it to the store",
		Long: `Build a proximity graph over the base file and write it to the store.

The filtered and stitched variants need labelled input (--format contest).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dispatch(&a.cfg.Data, false,
				func(in *input[float32]) error { return runBuild(cmd, a, in) },
				func(in *input[int32]) error { return runBuild(cmd, a, in) },
				func(in *input[uint8]) error { return runBuild(cmd, a, in) },
			)
		},
	}

	def := a.flags.Build
	f := cmd.Flags()

	f.StringVar(bind(a, "build", "variant", func(c *Config) *string { return &c.Build.Variant }), "variant", def.Variant,
		"construction algorithm: vamana, filtered or stitched")
	f.Float64Var(bind(a, "build", "alpha", func(c *Config) *float64 { return &c.Build.Alpha }), "alpha", def.Alpha, "pruning factor (>= 1)")
	f.IntVarP(bind(a, "build", "list-size", func(c *Config) *int { return &c.Build.L }), "list-size", "L", def.L, "search budget during construction")
	f.IntVarP(bind(a, "build", "max-degree", func(c *Config) *int { return &c.Build.R }), "max-degree", "R", def.R, "out-degree bound")
	f.IntVar(bind(a, "build", "regularity", func(c *Config) *int { return &c.Build.Regularity }), "regularity", def.Regularity,
		"degree of the initial random graph (0 means max-degree)")
	f.StringVar(bind(a, "build", "entry", func(c *Config) *string { return &c.Build.Entry }), "entry", def.Entry,
		"start node of unfiltered builds: medoid or random")
	f.IntVar(bind(a, "build", "tau", func(c *Config) *int { return &c.Build.Tau }), "tau", def.Tau, "seed nodes sampled per label")
	f.IntVar(bind(a, "build", "sub-list-size", func(c *Config) *int { return &c.Build.SubL }), "sub-list-size", def.SubL,
		"search budget of the per-label graphs (stitched)")
	f.IntVar(bind(a, "build", "sub-max-degree", func(c *Config) *int { return &c.Build.SubR }), "sub-max-degree", def.SubR,
		"out-degree bound of the per-label graphs (stitched)")
	f.IntVar(bind(a, "build", "stitched-max-degree", func(c *Config) *int { return &c.Build.StitchedR }), "stitched-max-degree", def.StitchedR,
		"out-degree bound of the stitched graph")
	f.IntVarP(bind(a, "build", "workers", func(c *Config) *int { return &c.Build.Workers }), "workers", "w", def.Workers,
		"concurrent insertion steps (1 is reproducible)")

	return cmd
}

func runBuild[T distance.Number](cmd *cobra.Command, a *app, in *input[T]) error {
	ctx, cancel := a.context(cmd)
	defer cancel()

	variant, opts, err := a.cfg.BuildOptions()
	if err != nil {
		return err
	}

	if variant != vamana.VariantVamana && in.Labels == nil {
		return fmt.Errorf("variant %s needs labelled input", variant)
	}

	compression, err := graph.ParseCompression(a.cfg.Compression)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, &a.cfg)
	if err != nil {
		return err
	}

	idx, err := vamana.New(in.Points, a.indexOptions(in.Labels)...)
	if err != nil {
		return err
	}

	start := time.Now()

	if err := idx.Build(ctx, variant, opts); err != nil {
		return err
	}

	elapsed := time.Since(start)

	if err := idx.SaveGraphTo(ctx, store, a.cfg.Graph, compression); err != nil {
		return err
	}

	s := idx.Graph().Stats()

	fmt.Fprintf(cmd.OutOrStdout(), "built %s graph over %d points in %s\n", variant, s.Nodes, elapsed.Round(time.Millisecond))
	fmt.Fprintf(cmd.OutOrStdout(), "edges %d, degree min %d max %d mean %.2f\n", s.Edges, s.MinDegree, s.MaxDegree, s.MeanDegree)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s to %s\n", a.cfg.Graph, a.cfg.Store)

	return nil
}
