package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	jobRuns      *prometheus.CounterVec
	jobErrors    *prometheus.CounterVec
	jobTimeouts  *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	syncedSvcs   *prometheus.CounterVec
	syncFailures *prometheus.CounterVec
	reconciled   prometheus.Counter
	ordersPlaced *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "viralzap_job_runs_total",
			Help: "Scheduler job executions.",
		}, []string{"job"}),
		jobErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "viralzap_job_errors_total",
			Help: "Scheduler job executions that returned an error.",
		}, []string{"job"}),
		jobTimeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "viralzap_job_timeouts_total",
			Help: "Scheduler job executions cut off by the job timeout.",
		}, []string{"job"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "viralzap_job_duration_seconds",
			Help:    "Scheduler job wall time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job"}),
		syncedSvcs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "viralzap_catalog_services_synced_total",
			Help: "Catalog entries written during sync, by outcome.",
		}, []string{"outcome"}),
		syncFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "viralzap_catalog_provider_failures_total",
			Help: "Provider list calls that failed during catalog sync.",
		}, []string{"provider"}),
		reconciled: factory.NewCounter(prometheus.CounterOpts{
			Name: "viralzap_orders_reconciled_total",
			Help: "Orders updated by the status reconciler.",
		}),
		ordersPlaced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "viralzap_orders_placed_total",
			Help: "Orders accepted through the storefront, by provider.",
		}, []string{"provider"}),
	}
}

func (m *Metrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *Metrics) IncJobError(job string) {
	if m == nil {
		return
	}
	m.jobErrors.WithLabelValues(job).Inc()
}

func (m *Metrics) IncJobTimeout(job string) {
	if m == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

func (m *Metrics) ObserveJobDuration(job string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}

func (m *Metrics) AddServicesSynced(outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.syncedSvcs.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) IncProviderSyncFailure(provider string) {
	if m == nil {
		return
	}
	m.syncFailures.WithLabelValues(provider).Inc()
}

func (m *Metrics) AddOrdersReconciled(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reconciled.Add(float64(n))
}

func (m *Metrics) IncOrderPlaced(provider string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(provider).Inc()
}
