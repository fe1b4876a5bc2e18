package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/notefs/pkg/app"
)

// cacheMetrics is the Prometheus implementation of app.Metrics.
type cacheMetrics struct {
	readsTotal    *prometheus.CounterVec
	writesTotal   *prometheus.CounterVec
	readDuration  prometheus.Histogram
	writeDuration prometheus.Histogram
}

// ioBuckets covers local disk latencies up to slow network mounts.
var ioBuckets = []float64{
	0.0001, // 100µs
	0.001,  // 1ms
	0.01,   // 10ms
	0.05,   // 50ms
	0.1,    // 100ms
	0.5,    // 500ms
	1,
	5,
}

// NewCacheMetrics creates a Prometheus-backed app.Metrics instance.
//
// Returns nil when metrics are not enabled, which disables instrumentation
// in the orchestrator.
func NewCacheMetrics() app.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &cacheMetrics{
		readsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "notefs_cache_reads_total",
			Help: "Total number of completed background reads by status",
		}, []string{"status"}),
		writesTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "notefs_cache_writes_total",
			Help: "Total number of completed background writes by status",
		}, []string{"status"}),
		readDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "notefs_cache_read_duration_seconds",
			Help:    "Wall time from read submission to completion in seconds",
			Buckets: ioBuckets,
		}),
		writeDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "notefs_cache_write_duration_seconds",
			Help:    "Wall time from write submission to completion in seconds",
			Buckets: ioBuckets,
		}),
	}
}

func statusLabel(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

func (m *cacheMetrics) ReadCompleted(success bool, duration time.Duration) {
	m.readsTotal.WithLabelValues(statusLabel(success)).Inc()
	m.readDuration.Observe(duration.Seconds())
}

func (m *cacheMetrics) WriteCompleted(success bool, duration time.Duration) {
	m.writesTotal.WithLabelValues(statusLabel(success)).Inc()
	m.writeDuration.Observe(duration.Seconds())
}
