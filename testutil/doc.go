// Package testutil provides testing utilities for vamana.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random points and labels and for
// computing exact nearest neighbors.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformVectors(1000, 32)
//	points, labels := rng.LabelledClusters(1000, 32, 5, 0.1)
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.ExactTopK(points, query, k, nil)
package testutil
