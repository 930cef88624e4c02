package main

import (
	"net/http"
	"testing"

	"github.com/damacus/s3-browser/internal/config"
	"github.com/damacus/s3-browser/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestNewStorageFactory(t *testing.T) {
	cfg := config.Default()
	cfg.Endpoint = "localhost:9000"

	aws, ok := newStorageFactory(cfg).(*services.AWSFactory)
	if assert.True(t, ok) {
		assert.Equal(t, config.DefaultRegion, aws.Region)
		assert.Equal(t, "localhost:9000", aws.Endpoint)
	}

	cfg.Backend = config.BackendMinio
	cfg.Region = "eu-west-2"
	minio, ok := newStorageFactory(cfg).(*services.MinioFactory)
	if assert.True(t, ok) {
		assert.Equal(t, "eu-west-2", minio.Region)
		assert.Equal(t, "localhost:9000", minio.Endpoint)
	}
}

func TestRoutes(t *testing.T) {
	app := newTestApp(t)

	t.Run("Landing Page", func(t *testing.T) {
		rec := app.get("/")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Browse your S3 buckets")
		assert.Contains(t, rec.Body.String(), "Sign Out")
	})

	t.Run("Health", func(t *testing.T) {
		rec := app.get("/health")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "OK", rec.Body.String())
	})

	t.Run("Metrics", func(t *testing.T) {
		rec := app.get("/metrics")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `s3browser_http_requests_total{code="200",method="GET"}`)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})

	t.Run("Unknown Route", func(t *testing.T) {
		rec := app.get("/no/such/page")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "404 Not Found")
	})

	t.Run("Request ID", func(t *testing.T) {
		rec := app.get("/health")

		assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
	})
}
