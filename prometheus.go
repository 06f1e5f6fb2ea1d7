package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PromMetrics is a MetricsPolicy implementation that exports pool activity
// as Prometheus collectors. Metric names are prefixed with "dispatch_".
type PromMetrics struct {
	submitted prometheus.Counter
	executed  prometheus.Counter
	failed    prometheus.Counter
	evicted   prometheus.Counter
	queued    prometheus.Gauge
}

// NewPromMetrics builds the collectors and registers them on reg.
func NewPromMetrics(reg prometheus.Registerer) *PromMetrics {
	m := &PromMetrics{
		submitted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_jobs_submitted_total",
				Help: "Total number of tracked job submissions.",
			},
		),
		executed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_jobs_executed_total",
				Help: "Total number of jobs executed by workers.",
			},
		),
		failed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_jobs_failed_total",
				Help: "Total number of jobs that resolved with a failure.",
			},
		),
		evicted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "dispatch_workers_evicted_total",
				Help: "Total number of workers removed from service.",
			},
		),
		queued: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "dispatch_pending_jobs",
				Help: "Number of submissions waiting for a free worker.",
			},
		),
	}

	reg.MustRegister(m.submitted, m.executed, m.failed, m.evicted, m.queued)
	return m
}

func (m *PromMetrics) IncSubmitted() { m.submitted.Inc() }
func (m *PromMetrics) IncExecuted()  { m.executed.Inc() }
func (m *PromMetrics) IncFailed()    { m.failed.Inc() }
func (m *PromMetrics) IncQueued()    { m.queued.Inc() }
func (m *PromMetrics) DecQueued()    { m.queued.Dec() }
func (m *PromMetrics) IncEvicted()   { m.evicted.Inc() }
