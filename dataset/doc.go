// Package dataset reads the point, query and ground-truth files used to
// build and evaluate indexes.
//
// # Formats
//
//   - .fvecs, .ivecs, .bvecs: a sequence of records, each a little-endian
//     int32 dimension followed by that many float32, int32 or uint8 values.
//   - Contest base file: a uint32 point count, then per point a float32
//     label, a float32 timestamp and Dim float32 coordinates.
//   - Contest query file: a uint32 query count, then per query a float32
//     query type, a float32 label, two float32 range bounds and Dim float32
//     coordinates. Only types 0 (unfiltered) and 1 (label filter) are kept.
//
// The Read functions take any io.Reader; the Load functions memory-map a
// file and parse it in place.
package dataset
