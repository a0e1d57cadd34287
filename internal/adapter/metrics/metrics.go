// Package metrics exposes Prometheus metrics of the gateway and the
// key-value storage behind the stores.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/niksmo/shopcore/internal/core/port"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shop"

type Metrics struct {
	registry       *prometheus.Registry
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	storageOps     *prometheus.CounterVec
	storageLatency *prometheus.HistogramVec
}

// New registers the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of gateway requests",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of gateway requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		storageOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Total number of key-value storage operations",
			},
			[]string{"operation", "key", "result"},
		),
		storageLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_operation_duration_seconds",
				Help:      "Duration of key-value storage operations in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	m.registry.MustRegister(
		m.requestCounter,
		m.requestLatency,
		m.storageOps,
		m.storageLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware labels requests with the pattern matched by the wrapped
// ServeMux. Handlers in between must pass the request on unchanged.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	hf := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requestCounter.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Inc()
		m.requestLatency.
			WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	}
	return http.HandlerFunc(hf)
}

// Storage returns s reporting every Get and Set.
func (m *Metrics) Storage(s port.KeyValueStorage) port.KeyValueStorage {
	return instrumentedStorage{s, m}
}

type instrumentedStorage struct {
	port.KeyValueStorage
	m *Metrics
}

func (s instrumentedStorage) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	v, err := s.KeyValueStorage.Get(ctx, key)
	s.m.observeStorage("get", key, start, err)
	return v, err
}

func (s instrumentedStorage) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.KeyValueStorage.Set(ctx, key, value)
	s.m.observeStorage("set", key, start, err)
	return err
}

func (m *Metrics) observeStorage(op, key string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, port.ErrKeyNotFound):
		result = "not_found"
	case err != nil:
		result = "error"
	}
	m.storageOps.WithLabelValues(op, key, result).Inc()
	m.storageLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
