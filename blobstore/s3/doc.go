// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("graphs/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = index.SaveGraphTo(ctx, store, "sift.graph", graph.CompressionZSTD)
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large graphs
//   - Automatic pagination for listing
//   - Custom endpoints for S3-compatible services
package s3
