// Package distance provides the distance primitive the graph index is built on.
//
// Every comparison in the index (traversal ordering, pruning, medoid
// selection) uses squared Euclidean distance. The square root is never taken:
// it is monotonic, so rankings are unchanged, and it is cheaper.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	less := distance.SquaredL2(q, x) < distance.SquaredL2(q, y)
package distance
