package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/hupe1980/vamana/blobstore"
	"github.com/hupe1980/vamana/blobstore/minio"
	"github.com/hupe1980/vamana/blobstore/s3"
)

// storeLocation is a parsed --store value.
//
//	/var/lib/vamana             local directory
//	s3://bucket/prefix          Amazon S3 or a compatible service
//	minio://host:port/bucket/p  MinIO
type storeLocation struct {
	Scheme   string
	Path     string
	Endpoint string
	Bucket   string
	Prefix   string
}

func parseStoreLocation(s string) (storeLocation, error) {
	if s == "" {
		return storeLocation{}, fmt.Errorf("store cannot be empty")
	}

	if !strings.Contains(s, "://") {
		return storeLocation{Scheme: "file", Path: s}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return storeLocation{}, fmt.Errorf("parsing store %q: %w", s, err)
	}

	rest := strings.Trim(u.Path, "/")

	switch u.Scheme {
	case "file":
		p := u.Path
		if u.Host != "" {
			p = u.Host + u.Path
		}

		return storeLocation{Scheme: "file", Path: p}, nil
	case "s3":
		if u.Host == "" {
			return storeLocation{}, fmt.Errorf("store %q: missing bucket", s)
		}

		return storeLocation{Scheme: "s3", Bucket: u.Host, Prefix: rest}, nil
	case "minio":
		if u.Host == "" {
			return storeLocation{}, fmt.Errorf("store %q: missing endpoint", s)
		}

		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return storeLocation{}, fmt.Errorf("store %q: missing bucket", s)
		}

		return storeLocation{Scheme: "minio", Endpoint: u.Host, Bucket: bucket, Prefix: prefix}, nil
	default:
		return storeLocation{}, fmt.Errorf("store %q: unsupported scheme %q", s, u.Scheme)
	}
}

// openStore returns the blob store named by cfg.Store.
func openStore(ctx context.Context, cfg *Config) (blobstore.BlobStore, error) {
	loc, err := parseStoreLocation(cfg.Store)
	if err != nil {
		return nil, err
	}

	switch loc.Scheme {
	case "s3":
		return s3.New(ctx, loc.Bucket,
			s3.WithPrefix(loc.Prefix),
			s3.WithRegion(cfg.S3.Region),
			s3.WithEndpoint(cfg.S3.Endpoint),
		)
	case "minio":
		opts := []minio.Option{
			minio.WithPrefix(loc.Prefix),
			minio.WithSecure(cfg.MinIO.Secure),
			minio.WithRegion(cfg.MinIO.Region),
		}

		if cfg.MinIO.AccessKey != "" {
			opts = append(opts, minio.WithCredentials(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey))
		}

		return minio.New(loc.Endpoint, loc.Bucket, opts...)
	default:
		return blobstore.NewLocalStore(loc.Path), nil
	}
}
