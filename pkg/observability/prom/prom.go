// Package prom implements the observability hooks with Prometheus metrics.
//
// A Collector owns its own registry so that several collectors (one per
// test, for instance) never collide on registration:
//
//	c := prom.NewCollector("reflections")
//	observability.SetMosaicHooks(c)
//	observability.SetStoreHooks(c)
//	observability.SetCacheHooks(c)
//	observability.SetHTTPHooks(c)
//	router.Handle("/metrics", c.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/reflections/pkg/observability"
)

// Collector holds all Prometheus metrics for the application.
type Collector struct {
	registry *prometheus.Registry

	// Server metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Mosaic metrics
	Renders        *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	RenderCells    prometheus.Histogram
	Encodes        *prometheus.CounterVec
	EncodeBytes    *prometheus.HistogramVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheWrites *prometheus.CounterVec

	// Client metrics
	ClientRequests *prometheus.CounterVec
	ClientDuration *prometheus.HistogramVec
}

// NewCollector creates a collector whose metric names are prefixed with
// namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		Renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mosaic_renders_total",
				Help:      "Total number of diagram tessellations",
			},
			[]string{"status"},
		),
		RenderDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "mosaic_render_duration_seconds",
				Help:      "Diagram tessellation duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		RenderCells: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "mosaic_render_cells",
				Help:      "Number of cells per rendered diagram",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		Encodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mosaic_encodes_total",
				Help:      "Total number of diagrams written per format",
			},
			[]string{"format", "status"},
		),
		EncodeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "mosaic_encode_bytes",
				Help:      "Size of encoded diagrams in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
			},
			[]string{"format"},
		),

		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of store operations",
			},
			[]string{"backend", "operation", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"key_type"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"key_type"},
		),
		CacheWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_writes_total",
				Help:      "Total number of cache writes",
			},
			[]string{"key_type"},
		),

		ClientRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Total number of outgoing API requests",
			},
			[]string{"method", "path", "status"},
		),
		ClientDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_request_duration_seconds",
				Help:      "Outgoing API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests, c.HTTPDuration,
		c.Renders, c.RenderDuration, c.RenderCells, c.Encodes, c.EncodeBytes,
		c.StoreOperations, c.StoreDuration,
		c.CacheHits, c.CacheMisses, c.CacheWrites,
		c.ClientRequests, c.ClientDuration,
	)
	return c
}

// Registry returns the Prometheus registry for this collector.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) OnRender(_ context.Context, points, cells int, d time.Duration, err error) {
	c.Renders.WithLabelValues(status(err)).Inc()
	if err == nil {
		c.RenderDuration.Observe(d.Seconds())
		c.RenderCells.Observe(float64(cells))
	}
}

func (c *Collector) OnEncode(_ context.Context, format string, size int, _ time.Duration, err error) {
	c.Encodes.WithLabelValues(format, status(err)).Inc()
	if err == nil {
		c.EncodeBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (c *Collector) OnOperation(_ context.Context, backend, op string, d time.Duration, err error) {
	c.StoreOperations.WithLabelValues(backend, op, status(err)).Inc()
	c.StoreDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (c *Collector) OnCacheHit(_ context.Context, keyType string) {
	c.CacheHits.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, keyType string) {
	c.CacheMisses.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, keyType string, _ int) {
	c.CacheWrites.WithLabelValues(keyType).Inc()
}

func (c *Collector) OnRequest(context.Context, string, string, string) {}

func (c *Collector) OnResponse(_ context.Context, method, _, path string, statusCode int, d time.Duration) {
	c.ClientRequests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	c.ClientDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (c *Collector) OnError(_ context.Context, method, _, path string, _ error) {
	c.ClientRequests.WithLabelValues(method, path, "error").Inc()
}

// Install registers c for every hook category.
func (c *Collector) Install() {
	observability.SetMosaicHooks(c)
	observability.SetStoreHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var (
	_ observability.MosaicHooks = (*Collector)(nil)
	_ observability.StoreHooks  = (*Collector)(nil)
	_ observability.CacheHooks  = (*Collector)(nil)
	_ observability.HTTPHooks   = (*Collector)(nil)
)
