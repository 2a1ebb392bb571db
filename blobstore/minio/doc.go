// Package minio provides a BlobStore backed by MinIO or any S3-compatible
// service reachable through the MinIO client.
//
//	store, err := minioblob.New("localhost:9000", "graphs",
//	    minioblob.WithCredentials("minioadmin", "minioadmin"),
//	    minioblob.WithPrefix("sift/"),
//	)
//	err = index.SaveGraphTo(ctx, store, "sift.graph", graph.CompressionLZ4)
//
// No AWS SDK is required, which keeps air-gapped deployments simple.
package minio
