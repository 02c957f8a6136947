package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// SchedulerMetrics tracks background job executions.
type SchedulerMetrics struct {
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	jobSkips    *prometheus.CounterVec
	itemsTotal  *prometheus.CounterVec
}

var (
	schedulerOnce sync.Once
	scheduler     *SchedulerMetrics
)

// Scheduler returns the process-wide scheduler metrics collector.
func Scheduler() *SchedulerMetrics {
	return SchedulerWithConfig(Config{})
}

// SchedulerWithConfig initializes the collector on first use.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerOnce.Do(func() {
		constLabels := prometheus.Labels{
			"service": labelValue(cfg.ServiceName, "lodgeops"),
			"env":     labelValue(cfg.Environment, "development"),
		}
		scheduler = &SchedulerMetrics{
			jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace:   "lodgeops",
				Subsystem:   "scheduler",
				Name:        "job_runs_total",
				Help:        "Job executions by job name and result.",
				ConstLabels: constLabels,
			}, []string{"job", "result"}),
			jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace:   "lodgeops",
				Subsystem:   "scheduler",
				Name:        "job_duration_seconds",
				Help:        "Job execution latency by job name.",
				ConstLabels: constLabels,
				Buckets:     []float64{0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			}, []string{"job"}),
			jobSkips: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace:   "lodgeops",
				Subsystem:   "scheduler",
				Name:        "job_skips_total",
				Help:        "Ticks skipped because the previous run was still in flight.",
				ConstLabels: constLabels,
			}, []string{"job"}),
			itemsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace:   "lodgeops",
				Subsystem:   "scheduler",
				Name:        "job_items_total",
				Help:        "Items processed by job name and outcome.",
				ConstLabels: constLabels,
			}, []string{"job", "outcome"}),
		}
	})
	return scheduler
}

func (m *SchedulerMetrics) ObserveRun(job string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *SchedulerMetrics) ObserveSkip(job string) {
	m.jobSkips.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) AddItems(job, outcome string, count int) {
	if count <= 0 {
		return
	}
	m.itemsTotal.WithLabelValues(job, outcome).Add(float64(count))
}

// RunCount reads back the counter value for assertions in tests.
func (m *SchedulerMetrics) RunCount(job, result string) float64 {
	counter, err := m.jobRuns.GetMetricWithLabelValues(job, result)
	if err != nil {
		return 0
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}

// SkipCount reads back the skip counter value for assertions in tests.
func (m *SchedulerMetrics) SkipCount(job string) float64 {
	counter, err := m.jobSkips.GetMetricWithLabelValues(strings.TrimSpace(job))
	if err != nil {
		return 0
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		return 0
	}
	return metric.GetCounter().GetValue()
}
