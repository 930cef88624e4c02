package services

import (
	"context"
	"io"
	"time"

	"github.com/damacus/s3-browser/internal/metrics"
	"github.com/damacus/s3-browser/internal/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedFactory decorates every client it builds with a tracing span
// and Prometheus metrics per backend call.
type InstrumentedFactory struct {
	Inner   StorageClientFactory
	Metrics *metrics.Metrics
}

func (f *InstrumentedFactory) NewClient(creds Credentials) (StorageClient, error) {
	inner, err := f.Inner.NewClient(creds)
	if err != nil {
		return nil, err
	}
	return &instrumentedClient{inner: inner, metrics: f.Metrics}, nil
}

type instrumentedClient struct {
	inner   StorageClient
	metrics *metrics.Metrics
}

func (c *instrumentedClient) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := tracing.Tracer().Start(ctx, "s3."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	start := time.Now()
	return ctx, func(err error) {
		if c.metrics != nil {
			c.metrics.ObserveBackendCall(op, time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func (c *instrumentedClient) ListBuckets(ctx context.Context) ([]BucketInfo, error) {
	ctx, done := c.observe(ctx, "list_buckets")
	buckets, err := c.inner.ListBuckets(ctx)
	done(err)
	return buckets, err
}

func (c *instrumentedClient) ListObjects(ctx context.Context, bucketName string) ([]ObjectInfo, error) {
	ctx, done := c.observe(ctx, "list_objects", attribute.String("s3.bucket", bucketName))
	objects, err := c.inner.ListObjects(ctx, bucketName)
	done(err)
	return objects, err
}

func (c *instrumentedClient) GetObject(ctx context.Context, bucketName, key string) (io.ReadCloser, ObjectInfo, error) {
	ctx, done := c.observe(ctx, "get_object",
		attribute.String("s3.bucket", bucketName),
		attribute.String("s3.key", key),
	)
	body, info, err := c.inner.GetObject(ctx, bucketName, key)
	done(err)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	return &countingReadCloser{ReadCloser: body, metrics: c.metrics}, info, nil
}

// BucketUsage forwards to the wrapped client when it reports usage.
func (c *instrumentedClient) BucketUsage(ctx context.Context) (map[string]uint64, error) {
	reporter, ok := c.inner.(UsageReporter)
	if !ok {
		return nil, nil
	}
	ctx, done := c.observe(ctx, "bucket_usage")
	usage, err := reporter.BucketUsage(ctx)
	done(err)
	return usage, err
}

type countingReadCloser struct {
	io.ReadCloser
	metrics *metrics.Metrics
}

func (r *countingReadCloser) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	if r.metrics != nil {
		r.metrics.AddDownloadedBytes(int64(n))
	}
	return n, err
}
