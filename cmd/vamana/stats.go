package main

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vamana"
	"github.com/hupe1980/vamana/blobstore"
	"github.com/hupe1980/vamana/distance"
	"github.com/hupe1980/vamana/graph"
)

func newStatsCmd(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show degree statistics of a stored graph",
		Long: `Show degree statistics of a stored graph.

With --base the points are loaded as well and the report includes how many
nodes are reachable from the medoid, or from the start node of every label
for labelled input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Data.Base == "" {
				return runGraphStats(cmd, a, jsonOut)
			}

			return dispatch(&a.cfg.Data, false,
				func(in *input[float32]) error { return runStats(cmd, a, in, jsonOut) },
				func(in *input[int32]) error { return runStats(cmd, a, in, jsonOut) },
				func(in *input[uint8]) error { return runStats(cmd, a, in, jsonOut) },
			)
		},
	}

	cmd.Flags().IntVar(bind(a, "stats", "tau", func(c *Config) *int { return &c.Build.Tau }), "tau", a.flags.Build.Tau,
		"seed nodes sampled per label when picking start nodes")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}

// statsReport is the output of the stats command. Reachable is -1 when no
// start nodes are known.
type statsReport struct {
	Graph      string   `json:"graph"`
	Nodes      int      `json:"nodes"`
	Edges      int      `json:"edges"`
	MinDegree  int      `json:"min_degree"`
	MaxDegree  int      `json:"max_degree"`
	MeanDegree float64  `json:"mean_degree"`
	Isolated   int      `json:"isolated"`
	Starts     []uint32 `json:"starts,omitempty"`
	Reachable  int      `json:"reachable"`
}

func newStatsReport(name string, s graph.Stats) statsReport {
	return statsReport{
		Graph:      name,
		Nodes:      s.Nodes,
		Edges:      s.Edges,
		MinDegree:  s.MinDegree,
		MaxDegree:  s.MaxDegree,
		MeanDegree: s.MeanDegree,
		Isolated:   s.Isolated,
		Reachable:  -1,
	}
}

func runGraphStats(cmd *cobra.Command, a *app, jsonOut bool) error {
	ctx, cancel := a.context(cmd)
	defer cancel()

	g, err := decodeGraph(ctx, &a.cfg)
	if err != nil {
		return err
	}

	return writeStats(cmd, newStatsReport(a.cfg.Graph, g.Stats()), jsonOut)
}

func decodeGraph(ctx context.Context, cfg *Config) (*graph.Graph, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	b, err := store.Open(ctx, cfg.Graph)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Graph, err)
	}
	defer b.Close()

	r, err := blobstore.NewReader(ctx, b)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return graph.Decode(r)
}

func runStats[T distance.Number](cmd *cobra.Command, a *app, in *input[T], jsonOut bool) error {
	ctx, cancel := a.context(cmd)
	defer cancel()

	store, err := openStore(ctx, &a.cfg)
	if err != nil {
		return err
	}

	idx, err := vamana.New(in.Points, a.indexOptions(in.Labels)...)
	if err != nil {
		return err
	}

	if err := idx.LoadGraphFrom(ctx, store, a.cfg.Graph); err != nil {
		return err
	}

	r := newStatsReport(a.cfg.Graph, idx.Graph().Stats())

	if in.Labels == nil {
		m, err := idx.Medoid()
		if err != nil {
			return err
		}

		r.Starts = []uint32{m}
	} else {
		starts, err := idx.FilteredFindMedoid(a.cfg.Build.Tau)
		if err != nil {
			return err
		}

		r.Starts = slices.Sorted(maps.Values(starts))
		r.Starts = slices.Compact(r.Starts)
	}

	if r.Reachable, err = idx.Graph().Reachable(r.Starts...); err != nil {
		return err
	}

	return writeStats(cmd, r, jsonOut)
}

func writeStats(cmd *cobra.Command, r statsReport, jsonOut bool) error {
	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), r)
	}

	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "graph %s: %d nodes, %d edges\n", r.Graph, r.Nodes, r.Edges)
	fmt.Fprintf(w, "degree min %d max %d mean %.2f, isolated %d\n", r.MinDegree, r.MaxDegree, r.MeanDegree, r.Isolated)

	if r.Reachable >= 0 {
		fmt.Fprintf(w, "reachable from %d start nodes: %d of %d\n", len(r.Starts), r.Reachable, r.Nodes)
	}

	return nil
}
