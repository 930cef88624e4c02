package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/damacus/s3-browser/internal/models"
	"github.com/damacus/s3-browser/internal/services"
	"github.com/damacus/s3-browser/internal/utils"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// streamBufferSize is the chunk read from the backend before headers are sent.
const streamBufferSize = 32 * 1024

type BucketsHandler struct {
	factory services.StorageClientFactory
	logger  logrus.FieldLogger
}

func NewBucketsHandler(factory services.StorageClientFactory, logger logrus.FieldLogger) *BucketsHandler {
	return &BucketsHandler{factory: factory, logger: logger}
}

func (h *BucketsHandler) client(c echo.Context) (services.StorageClient, bool, error) {
	creds, ok, err := GetCredentialsOrRedirect(c)
	if !ok {
		return nil, false, err
	}
	client, err := h.factory.NewClient(*creds)
	if err != nil {
		return nil, false, echo.NewHTTPError(http.StatusInternalServerError, "Failed to create storage client").SetInternal(err)
	}
	return client, true, nil
}

// ListBuckets renders the buckets page
func (h *BucketsHandler) ListBuckets(c echo.Context) error {
	client, ok, err := h.client(c)
	if !ok {
		return err
	}

	var (
		buckets []services.BucketInfo
		usage   map[string]uint64
	)
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		var err error
		buckets, err = client.ListBuckets(ctx)
		return err
	})
	// Sizes are best effort; a failing admin API never fails the page.
	if reporter, ok := client.(services.UsageReporter); ok {
		g.Go(func() error {
			u, err := reporter.BucketUsage(ctx)
			if err != nil {
				h.logger.WithError(err).Debug("bucket usage unavailable")
				return nil
			}
			usage = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return backendError(err)
	}

	rows := make([]models.BucketInfo, 0, len(buckets))
	for _, b := range buckets {
		size, hasUsage := usage[b.Name]
		rows = append(rows, models.BucketInfo{
			Name:          b.Name,
			CreationDate:  b.CreationDate,
			HasUsage:      hasUsage,
			FormattedSize: utils.FormatBytes(size),
		})
	}

	return c.Render(http.StatusOK, "buckets", map[string]interface{}{
		"Buckets":   rows,
		"ShowUsage": usage != nil,
	})
}

// ListObjects renders one page of a bucket's listing
func (h *BucketsHandler) ListObjects(c echo.Context) error {
	client, ok, err := h.client(c)
	if !ok {
		return err
	}

	page, err := positiveQueryInt(c, "page", 1, math.MaxInt)
	if err != nil {
		return err
	}
	size, err := positiveQueryInt(c, "size", services.DefaultPageSize, services.MaxPageSize)
	if err != nil {
		return err
	}

	bucketName := c.Param("bucketName")
	objects, err := client.ListObjects(c.Request().Context(), bucketName)
	if err != nil {
		return backendError(err)
	}

	p := services.Paginate(objects, page, size)
	rows := make([]models.ObjectInfo, 0, len(p.Items))
	for _, obj := range p.Items {
		rows = append(rows, models.ObjectInfo{
			Key:           obj.Key,
			Size:          obj.Size,
			FormattedSize: utils.FormatFileSize(obj.Size),
			LastModified:  obj.LastModified,
			ContentType:   obj.ContentType,
			DownloadURL:   downloadURL(bucketName, obj.Key),
		})
	}

	return c.Render(http.StatusOK, "objects", map[string]interface{}{
		"BucketName":   bucketName,
		"Objects":      rows,
		"TotalObjects": p.TotalItems,
		"CurrentPage":  p.Number,
		"TotalPages":   p.TotalPages,
		"HasPrev":      p.HasPrev(),
		"HasNext":      p.HasNext(),
		"PrevPage":     p.PrevPage(),
		"NextPage":     p.NextPage(),
		"Size":         p.Size,
	})
}

// DownloadObject streams an object to the browser as an attachment
func (h *BucketsHandler) DownloadObject(c echo.Context) error {
	client, ok, err := h.client(c)
	if !ok {
		return err
	}

	bucketName := c.Param("bucketName")
	key := objectKeyParam(c)
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Object key is required")
	}

	body, info, err := client.GetObject(c.Request().Context(), bucketName, key)
	if err != nil {
		return backendError(err)
	}
	defer func() { _ = body.Close() }()

	reader := bufio.NewReaderSize(body, streamBufferSize)
	if _, err := reader.Peek(1); err != nil && !errors.Is(err, io.EOF) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read object").SetInternal(err)
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attachmentName(key)))
	if info.Size >= 0 {
		header.Set(echo.HeaderContentLength, strconv.FormatInt(info.Size, 10))
	}
	header.Set(echo.HeaderContentType, echo.MIMEOctetStream)
	c.Response().WriteHeader(http.StatusOK)

	written, err := io.Copy(c.Response(), reader)
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"bucket":     bucketName,
			"key":        key,
			"written":    written,
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).Error("download interrupted")
		// The status line is gone; dropping the connection is the only way to
		// tell the client the transfer failed, with or without Content-Length.
		panic(http.ErrAbortHandler)
	}
	return nil
}

// positiveQueryInt parses an optional query value >= 1, clamped to limit.
func positiveQueryInt(c echo.Context, name string, def, limit int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("%s must be a positive integer", name))
	}
	return min(v, limit), nil
}
