package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/overseas-crm/internal/dto"
)

// MetricsService owns the Prometheus registry and keeps running totals for the
// /metrics/summary snapshot.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeOps        *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	auditRecorded   *prometheus.CounterVec
	logins          *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	storeOpCount         uint64
	storeFailureCount    uint64
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_store_operations_total",
		Help: "Key-value store operations by kind and outcome",
	}, []string{"op", "outcome"})

	storeDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_store_operation_seconds",
		Help:    "Latency of key-value store operations",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
	}, []string{"op"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crm_cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crm_cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crm_cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crm_cache_misses_total",
		Help: "Total cache misses",
	})

	auditRecorded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_audit_entries_total",
		Help: "Audit entries by action and outcome",
	}, []string{"action", "outcome"})

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_logins_total",
		Help: "Login attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "crm_goroutines",
		Help: "Number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeOps, storeDuration, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses, auditRecorded, logins, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeOps:        storeOps,
		storeDuration:   storeDuration,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		auditRecorded:   auditRecorded,
		logins:          logins,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveStoreOperation implements kvstore.Observer.
func (m *MetricsService) ObserveStoreOperation(op string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !success {
		outcome = "error"
		atomic.AddUint64(&m.storeFailureCount, 1)
	}
	m.storeOps.WithLabelValues(op, outcome).Inc()
	m.storeDuration.WithLabelValues(op).Observe(duration.Seconds())
	atomic.AddUint64(&m.storeOpCount, 1)
}

// RecordCacheOperation records a cache hit or miss and updates the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks cache write latency.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordAudit counts an audit write.
func (m *MetricsService) RecordAudit(action string, success bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	m.auditRecorded.WithLabelValues(action, outcome).Inc()
}

// RecordLogin counts a login attempt.
func (m *MetricsService) RecordLogin(success bool) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// Snapshot returns aggregated totals.
func (m *MetricsService) Snapshot() dto.MetricsSnapshot {
	if m == nil {
		return dto.MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var ratio float64
	if hits+misses > 0 {
		ratio = float64(hits) / float64(hits+misses)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return dto.MetricsSnapshot{
		CacheHitRatio:            ratio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		StoreOperations:          atomic.LoadUint64(&m.storeOpCount),
		StoreFailures:            atomic.LoadUint64(&m.storeFailureCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
