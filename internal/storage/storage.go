// Package storage persists uploaded item images in an object store.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/teacellar/apiserver/config"
)

// ImageStore defines the object operations the image relay needs.
type ImageStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// FromConfig builds an ImageStore for the configured backend; a nil store
// with a nil error means image uploads are disabled.
func FromConfig(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "minio":
		return NewMinioStore(cfg.Minio)
	case "gcs":
		return NewGCSStore(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
