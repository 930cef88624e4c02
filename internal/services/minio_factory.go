package services

import (
	"context"
	"io"
	"strings"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// DefaultMinioEndpoint is used when the minio backend has no endpoint set.
const DefaultMinioEndpoint = "s3.amazonaws.com"

// MinioAdminClient is the madmin method used for bucket sizes.
type MinioAdminClient interface {
	DataUsageInfo(ctx context.Context) (madmin.DataUsageInfo, error)
}

// MinioStorageClient implements StorageClient with minio-go.
type MinioStorageClient struct {
	client *minio.Client
	admin  MinioAdminClient
}

var (
	_ StorageClient = (*MinioStorageClient)(nil)
	_ UsageReporter = (*MinioStorageClient)(nil)
)

func (c *MinioStorageClient) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	buckets, err := c.client.ListBuckets(ctx)
	if err != nil {
		return nil, classifyMinioError("list buckets", err)
	}
	out := make([]BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, BucketInfo{Name: b.Name, CreationDate: b.CreationDate})
	}
	return out, nil
}

func (c *MinioStorageClient) ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error) {
	// Recursive listing without delimiter; the channel follows continuation
	// tokens internally.
	objects := []ObjectInfo{}
	for obj := range c.client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, classifyMinioError("list objects", obj.Err)
		}
		objects = append(objects, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
		})
	}
	return objects, nil
}

func (c *MinioStorageClient) GetObject(ctx context.Context, bucketName, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := c.client.GetObject(ctx, bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, classifyMinioError("get object", err)
	}
	// GetObject is lazy; Stat issues the first request.
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, classifyMinioError("get object", err)
	}
	return obj, ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		LastModified: info.LastModified,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
	}, nil
}

// BucketUsage returns bucket sizes from the MinIO admin API. Plain S3
// endpoints do not serve it, so callers treat errors as "unknown".
func (c *MinioStorageClient) BucketUsage(ctx context.Context) (map[string]uint64, error) {
	if c.admin == nil {
		return nil, nil
	}
	usage, err := c.admin.DataUsageInfo(ctx)
	if err != nil {
		return nil, classifyMinioError("data usage", err)
	}
	return usage.BucketSizes, nil
}

// MinioFactory builds minio-go clients bound to one endpoint and region.
type MinioFactory struct {
	Endpoint string
	Region   string
}

// shouldUseSSL determines if SSL should be used based on the endpoint.
// Returns false for localhost, 127.0.0.1, and docker service names.
func shouldUseSSL(endpoint string) bool {
	// Local development endpoints
	if endpoint == "localhost:9000" || endpoint == "127.0.0.1:9000" {
		return false
	}
	// Docker service names (minio:9000, minio1:9000, minio2:9000, etc.)
	// Only match simple hostnames without dots (not domain names like minio.example.com)
	if strings.HasPrefix(endpoint, "minio") && !strings.Contains(strings.Split(endpoint, ":")[0], ".") && strings.Contains(endpoint, ":9000") {
		return false
	}
	return true
}

// splitEndpoint accepts "host:port" or a URL and returns the host part and
// whether TLS should be used.
func splitEndpoint(endpoint string) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "http://"), "/"), false
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimSuffix(strings.TrimPrefix(endpoint, "https://"), "/"), true
	}
	return endpoint, shouldUseSSL(endpoint)
}

func (f *MinioFactory) NewClient(creds Credentials) (StorageClient, error) {
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = DefaultMinioEndpoint
	}
	host, secure := splitEndpoint(endpoint)

	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure: secure,
		Region: f.Region,
	})
	if err != nil {
		return nil, err
	}

	// Admin access is optional; a failure here only hides bucket sizes.
	wrapped := &MinioStorageClient{client: client}
	if admin, err := madmin.NewWithOptions(host, &madmin.Options{
		Creds:  credentials.NewStaticV4(creds.AccessKey, creds.SecretKey, ""),
		Secure: secure,
	}); err == nil {
		wrapped.admin = admin
	}
	return wrapped, nil
}
