// Package graph implements the directed, degree-bounded adjacency structure
// the Vamana index is built on.
//
// Nodes are dense uint32 identifiers in [0, n). Each node owns a sorted set of
// out-neighbors. Edges are directed and need not be symmetric; self-loops are
// rejected.
//
// # Concurrency
//
// Every node carries its own RWMutex. Single operations (AddEdge, Neighbors,
// ...) are atomic with respect to the node they touch. Compound
// read-modify-write updates of one node's list go through Mutate, which holds
// the node's write lock for the duration of the callback. No operation holds
// more than one node lock at a time.
//
// # Persistence
//
// Encode and Decode read and write the graph file format:
//
//	[Magic u32][Version u32][Compression u8][reserved 3][Count u32]
//	body (optionally LZ4/ZSTD compressed):
//	  Count × ([NodeID u32][Degree u32][Degree × Neighbor u32])
//	  [CRC32 of the uncompressed records u32]
//
// All integers are little-endian.
package graph
