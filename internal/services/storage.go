package services

import (
	"context"
	"io"
	"time"
)

// BucketInfo describes one bucket as reported by the backend.
type BucketInfo struct {
	Name         string
	CreationDate time.Time
}

// ObjectInfo describes one object as reported by the backend.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
	ContentType  string
}

// StorageClient is the subset of the S3 API the browser uses.
type StorageClient interface {
	// ListBuckets returns every bucket visible to the credentials, in
	// backend order.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)
	// ListObjects returns the complete recursive listing of a bucket,
	// following continuation tokens until the backend reports the end.
	ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error)
	// GetObject opens a stream of the object body. Metadata is resolved
	// before it returns, so a missing object fails here rather than on Read.
	// The caller must close the stream.
	GetObject(ctx context.Context, bucketName, key string) (io.ReadCloser, ObjectInfo, error)
}

// UsageReporter is implemented by clients that can report bucket sizes.
type UsageReporter interface {
	BucketUsage(ctx context.Context) (map[string]uint64, error)
}

// StorageClientFactory creates authenticated clients
type StorageClientFactory interface {
	NewClient(creds Credentials) (StorageClient, error)
}
