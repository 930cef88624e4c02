// Package metrics owns the Prometheus registry of the browser: HTTP request
// metrics collected by echo middleware and per-operation backend call metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "s3browser"

// Metrics provides a self-contained Prometheus registry.
type Metrics struct {
	reg             *prometheus.Registry
	inflight        prometheus.Gauge
	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	downloadedBytes prometheus.Counter
}

// New creates a Metrics instance with a fresh registry and registers collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		reg: reg,
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of inflight HTTP requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed, partitioned by status code and method.",
		}, []string{"code", "method"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Histogram of latencies for HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"code", "method"}),
		backendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Storage backend calls, partitioned by operation and outcome.",
		}, []string{"operation", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Histogram of storage backend call latencies.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "download",
			Name:      "bytes_total",
			Help:      "Object bytes streamed to clients.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.inflight,
		m.requests,
		m.latency,
		m.backendCalls,
		m.backendLatency,
		m.downloadedBytes,
	)
	return m
}

// Handler returns an http.Handler that serves Prometheus metrics using the internal registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Middleware collects inflight, requests_total and request_duration_seconds
// for every request except the metrics endpoint itself.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().URL.Path == "/metrics" {
				return next(c)
			}
			start := time.Now()
			m.inflight.Inc()
			defer m.inflight.Dec()

			err := next(c)

			status := c.Response().Status
			if err != nil {
				// The error handler has not run yet; use the status it will write.
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			code := strconv.Itoa(status)
			method := c.Request().Method
			m.requests.WithLabelValues(code, method).Inc()
			m.latency.WithLabelValues(code, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// ObserveBackendCall records one storage backend call.
func (m *Metrics) ObserveBackendCall(operation string, elapsed time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.backendCalls.WithLabelValues(operation, outcome).Inc()
	m.backendLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// AddDownloadedBytes counts bytes streamed to a client.
func (m *Metrics) AddDownloadedBytes(n int64) {
	if n > 0 {
		m.downloadedBytes.Add(float64(n))
	}
}
