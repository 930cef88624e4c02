package handlers

import (
	"context"
	"io"

	"github.com/damacus/s3-browser/internal/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
)

// MockStorageClient implements services.StorageClient for testing
type MockStorageClient struct {
	mock.Mock
}

func (m *MockStorageClient) ListBuckets(ctx context.Context) ([]services.BucketInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]services.BucketInfo), args.Error(1)
}

func (m *MockStorageClient) ListObjects(ctx context.Context, bucketName string) ([]services.ObjectInfo, error) {
	args := m.Called(ctx, bucketName)
	return args.Get(0).([]services.ObjectInfo), args.Error(1)
}

func (m *MockStorageClient) GetObject(ctx context.Context, bucketName, key string) (io.ReadCloser, services.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, key)
	body, _ := args.Get(0).(io.ReadCloser)
	return body, args.Get(1).(services.ObjectInfo), args.Error(2)
}

// MockUsageClient also reports bucket sizes
type MockUsageClient struct {
	MockStorageClient
}

func (m *MockUsageClient) BucketUsage(ctx context.Context) (map[string]uint64, error) {
	args := m.Called(ctx)
	usage, _ := args.Get(0).(map[string]uint64)
	return usage, args.Error(1)
}

// MockFactory implements services.StorageClientFactory for testing
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) NewClient(creds services.Credentials) (services.StorageClient, error) {
	args := m.Called(creds)
	client, _ := args.Get(0).(services.StorageClient)
	return client, args.Error(1)
}

// recordingRenderer remembers the last page rendered instead of producing HTML
type recordingRenderer struct {
	name string
	data map[string]interface{}
}

func (r *recordingRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	r.name = name
	r.data, _ = data.(map[string]interface{})
	_, err := io.WriteString(w, name)
	return err
}

// trackingBody records whether the handler closed the stream
type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

// failingReader fails on the first read
type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }
