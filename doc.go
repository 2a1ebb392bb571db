// Package vamana builds and searches proximity graphs for approximate
// nearest-neighbor search: Vamana for plain points and FilteredVamana and
// StitchedVamana for points carrying one filter label each.
//
// # Quick Start
//
//	idx, _ := vamana.New(points, vamana.WithSeed(42))
//	_ = idx.Vamana(ctx, vamana.DefaultBuildOptions())
//	res, _ := idx.Search(ctx, query, 10, 100)
//	fmt.Println(res.Neighbors)
//
// Filtered:
//
//	idx, _ := vamana.New(points, vamana.WithFilters(labels))
//	_ = idx.FilteredVamana(ctx, vamana.DefaultBuildOptions())
//	res, _ := idx.Search(ctx, query, 10, 100, vamana.WithFilter(3))
//
// # Building blocks
//
// The build algorithms are composed of operations that are exported for
// direct use:
//
//   - GreedySearch: best-first traversal with a candidate budget L
//   - RobustPrune / FilteredRobustPrune: alpha-diverse neighbor selection
//   - Medoid / RandomMedoid / FilteredFindMedoid: start node selection
//
// # Distances
//
// Points are compared by squared Euclidean distance. Candidate sets are
// ordered by distance to the query with ties broken by node id, so every
// traversal is deterministic for a fixed graph.
//
// # Persistence
//
// SaveGraph and LoadGraph use the binary format of package graph. SaveGraphTo
// and LoadGraphFrom do the same against any blobstore.BlobStore (local disk,
// memory, S3 or MinIO).
//
// # Concurrency
//
// Searches may run concurrently. Builds with Workers > 1 run permutation
// steps concurrently under per-node locks; a build must not overlap with
// searches or LoadGraph.
//
// # Errors
//
// Errors match ErrInvalidArgument, ErrOutOfRange or ErrInternal with
// errors.Is. An exhausted frontier and a label no node carries are not
// errors; they yield short or empty results.
package vamana
