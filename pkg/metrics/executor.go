package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/notefs/pkg/executor"
)

// executorMetrics is the Prometheus implementation of executor.Metrics.
type executorMetrics struct {
	queueDepth  prometheus.Gauge
	jobsTotal   prometheus.Counter
	jobDuration prometheus.Histogram
}

// NewExecutorMetrics creates a Prometheus-backed executor.Metrics instance.
//
// Returns nil when metrics are not enabled, which disables instrumentation
// in the executor.
func NewExecutorMetrics() executor.Metrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &executorMetrics{
		queueDepth: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "notefs_executor_queue_depth",
			Help: "Number of jobs currently waiting in the executor queue",
		}),
		jobsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "notefs_executor_jobs_total",
			Help: "Total number of jobs executed",
		}),
		jobDuration: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "notefs_executor_job_duration_seconds",
			Help: "Duration of executor jobs in seconds",
			Buckets: []float64{
				0.0001, // 100µs
				0.001,  // 1ms
				0.01,   // 10ms
				0.05,   // 50ms
				0.1,    // 100ms
				0.5,    // 500ms
				1,
				5,
			},
		}),
	}
}

func (m *executorMetrics) JobEnqueued(queueDepth int) {
	m.queueDepth.Set(float64(queueDepth))
}

func (m *executorMetrics) JobCompleted(duration time.Duration) {
	m.queueDepth.Dec()
	m.jobsTotal.Inc()
	m.jobDuration.Observe(duration.Seconds())
}
