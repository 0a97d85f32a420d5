package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic,
// cache lookups and scheduler runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	runDuration     *prometheus.HistogramVec
	runTotal        *prometheus.CounterVec
	placements      *prometheus.CounterVec
	validations     *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	draftsCreated        uint64
	draftsSkipped        uint64
	gapsDetected         uint64
}

// MetricsSnapshot is a compact view of the collected counters.
type MetricsSnapshot struct {
	Requests         uint64  `json:"requests"`
	AvgRequestMs     float64 `json:"avgRequestMs"`
	CacheHitRatio    float64 `json:"cacheHitRatio"`
	DraftsCreated    uint64  `json:"draftsCreated"`
	DraftsSkipped    uint64  `json:"draftsSkipped"`
	GapsDetected     uint64  `json:"gapsDetected"`
	GoroutinesActive int     `json:"goroutinesActive"`
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scheduler_run_duration_seconds",
		Help:    "Duration of autogen and publish runs",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_runs_total",
		Help: "Scheduler runs by operation and outcome",
	}, []string{"operation", "outcome"})

	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_placements_total",
		Help: "Placements produced by scheduler runs",
	}, []string{"operation", "result"})

	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_validations_total",
		Help: "Conflict checker invocations by mode and outcome",
	}, []string{"mode", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		runDuration, runTotal, placements, validations, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheHitRatio:   cacheHitRatio,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		runDuration:     runDuration,
		runTotal:        runTotal,
		placements:      placements,
		validations:     validations,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
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

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
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

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObserveRun records one autogen or publish run.
func (m *MetricsService) ObserveRun(operation string, created, skipped, gaps int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.runDuration.WithLabelValues(operation).Observe(duration.Seconds())
	m.runTotal.WithLabelValues(operation, outcome).Inc()
	m.placements.WithLabelValues(operation, "created").Add(float64(created))
	m.placements.WithLabelValues(operation, "skipped").Add(float64(skipped))
	m.placements.WithLabelValues(operation, "gap").Add(float64(gaps))
	atomic.AddUint64(&m.draftsCreated, uint64(created))
	atomic.AddUint64(&m.draftsSkipped, uint64(skipped))
	atomic.AddUint64(&m.gapsDetected, uint64(gaps))
}

// ObserveValidation counts a conflict-checker pass.
func (m *MetricsService) ObserveValidation(mode string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "rejected"
	}
	m.validations.WithLabelValues(mode, outcome).Inc()
}

// Snapshot returns aggregated metrics for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	return MetricsSnapshot{
		Requests:         requests,
		AvgRequestMs:     avgRequestMs,
		CacheHitRatio:    cacheRatio,
		DraftsCreated:    atomic.LoadUint64(&m.draftsCreated),
		DraftsSkipped:    atomic.LoadUint64(&m.draftsSkipped),
		GapsDetected:     atomic.LoadUint64(&m.gapsDetected),
		GoroutinesActive: runtime.NumGoroutine(),
	}
}
