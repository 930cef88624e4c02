package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/damacus/s3-browser/internal/config"
	"github.com/damacus/s3-browser/internal/handlers"
	"github.com/damacus/s3-browser/internal/logging"
	"github.com/damacus/s3-browser/internal/metrics"
	customMiddleware "github.com/damacus/s3-browser/internal/middleware"
	"github.com/damacus/s3-browser/internal/renderer"
	"github.com/damacus/s3-browser/internal/services"
	"github.com/damacus/s3-browser/internal/tracing"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("s3-browser stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Options{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logrus.WithError(err).Warn("tracing shutdown")
		}
	}()

	if cfg.SessionKey == "" {
		logrus.Warn("no session key configured; sessions will not survive a restart")
	}

	m := metrics.New()
	factory := &services.InstrumentedFactory{Inner: newStorageFactory(cfg), Metrics: m}
	e, err := newServer(factory, services.NewAuthService(cfg.SessionKey), m, logrus.StandardLogger())
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"address": cfg.Address,
		"backend": cfg.Backend,
		"region":  cfg.Region,
	}).Info("s3-browser starting")

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(cfg.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

// newStorageFactory picks the backend implementation from configuration.
func newStorageFactory(cfg config.Config) services.StorageClientFactory {
	if cfg.Backend == config.BackendMinio {
		return &services.MinioFactory{Region: cfg.Region, Endpoint: cfg.Endpoint}
	}
	return &services.AWSFactory{Region: cfg.Region, Endpoint: cfg.Endpoint}
}

func newServer(factory services.StorageClientFactory, authService *services.AuthService, m *metrics.Metrics, logger logrus.FieldLogger) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	tmpl, err := renderer.New()
	if err != nil {
		return nil, err
	}
	e.Renderer = tmpl
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(logger)

	authHandler := handlers.NewAuthHandler(authService)
	bucketsHandler := handlers.NewBucketsHandler(factory, logger)

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(customMiddleware.SecurityHeaders())
	e.Use(tracing.Middleware())
	e.Use(m.Middleware())
	e.Use(customMiddleware.CSRF())
	e.Use(customMiddleware.SessionMiddleware(authService))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	e.GET("/", authHandler.Index)
	e.POST("/setCredentials", authHandler.SetCredentials)
	e.GET("/logout", authHandler.Logout)

	e.GET("/buckets", bucketsHandler.ListBuckets)
	e.GET("/buckets/:bucketName", bucketsHandler.ListObjects)
	e.GET("/download/:bucketName/*", bucketsHandler.DownloadObject)

	return e, nil
}
