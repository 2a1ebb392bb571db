package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vamana"
	"github.com/hupe1980/vamana/dataset"
	"github.com/hupe1980/vamana/distance"
	"github.com/hupe1980/vamana/eval"
)

func newSearchCmd(a *app) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run queries against a stored graph and report recall",
		Long: `Load the base file and a stored graph, run every query and report
recall@k against exact ground truth, throughput and the mean number of
visited nodes.

Ground truth is read from --ground-truth (ivecs) or computed by brute force.
Filtered contest queries are restricted to their label.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dispatch(&a.cfg.Data, true,
				func(in *input[float32]) error { return runSearch(cmd, a, in, jsonOut) },
				func(in *input[int32]) error { return runSearch(cmd, a, in, jsonOut) },
				func(in *input[uint8]) error { return runSearch(cmd, a, in, jsonOut) },
			)
		},
	}

	def := a.flags
	f := cmd.Flags()

	f.StringVar(bind(a, "search", "queries", func(c *Config) *string { return &c.Data.Queries }), "queries", def.Data.Queries,
		"query file in the base file's format")
	f.StringVar(bind(a, "search", "ground-truth", func(c *Config) *string { return &c.Data.GroundTruth }), "ground-truth", def.Data.GroundTruth,
		"ground truth ivecs file")
	f.IntVar(bind(a, "search", "k", func(c *Config) *int { return &c.Search.K }), "k", def.Search.K, "neighbors per query")
	f.IntVarP(bind(a, "search", "list-size", func(c *Config) *int { return &c.Search.L }), "list-size", "L", def.Search.L, "search budget")
	f.IntVarP(bind(a, "search", "workers", func(c *Config) *int { return &c.Search.Workers }), "workers", "w", def.Search.Workers,
		"concurrent queries")
	f.BoolVar(&jsonOut, "json", false, "output as JSON")

	return cmd
}

// searchReport summarizes one search run.
type searchReport struct {
	Graph       string        `json:"graph"`
	Queries     int           `json:"queries"`
	Filtered    int           `json:"filtered"`
	K           int           `json:"k"`
	L           int           `json:"l"`
	Recall      float64       `json:"recall"`
	QPS         float64       `json:"qps"`
	MeanVisited float64       `json:"mean_visited"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

func runSearch[T distance.Number](cmd *cobra.Command, a *app, in *input[T], jsonOut bool) error {
	ctx, cancel := a.context(cmd)
	defer cancel()

	k, l := a.cfg.Search.K, a.cfg.Search.L
	if k < 1 || l < k {
		return fmt.Errorf("%w: k=%d, L=%d", ErrInvalidK, k, l)
	}

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

	var truth [][]uint32

	if a.cfg.Data.GroundTruth != "" {
		truth, err = dataset.LoadGroundTruth(a.cfg.Data.GroundTruth)
		if err != nil {
			return fmt.Errorf("loading ground truth: %w", err)
		}

		if len(truth) < len(in.Queries) {
			return fmt.Errorf("ground truth covers %d of %d queries", len(truth), len(in.Queries))
		}
	} else {
		truth, err = eval.GroundTruth(ctx, in.Points, in.Labels, in.Queries, k)
		if err != nil {
			return err
		}
	}

	results := make([][]uint32, len(in.Queries))
	visited := make([]int, len(in.Queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, a.cfg.Search.Workers))

	start := time.Now()

	for i, q := range in.Queries {
		g.Go(func() error {
			var opts []vamana.SearchOption
			if q.Label != nil {
				opts = append(opts, vamana.WithFilter(*q.Label))
			}

			res, err := idx.Search(gctx, q.Point, k, l, opts...)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}

			results[i] = res.Neighbors
			visited[i] = len(res.Visited)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(start)

	r := searchReport{
		Graph:   a.cfg.Graph,
		Queries: len(in.Queries),
		K:       k,
		L:       l,
		Recall:  eval.MeanRecall(results, truth, k),
		Elapsed: elapsed,
	}

	var total int
	for i, v := range visited {
		total += v

		if in.Queries[i].Label != nil {
			r.Filtered++
		}
	}

	if r.Queries > 0 {
		r.MeanVisited = float64(total) / float64(r.Queries)
		r.QPS = float64(r.Queries) / max(elapsed.Seconds(), 1e-9)
	}

	if jsonOut {
		return writeJSON(cmd.OutOrStdout(), r)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "queries %d (filtered %d), k=%d, L=%d\n", r.Queries, r.Filtered, r.K, r.L)
	fmt.Fprintf(cmd.OutOrStdout(), "recall@%d %.4f\n", r.K, r.Recall)
	fmt.Fprintf(cmd.OutOrStdout(), "qps %.1f, mean visited %.1f\n", r.QPS, r.MeanVisited)

	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
