// Package metrics defines the Prometheus collectors for the aggregation
// subsystem. All consumers treat a nil *Metrics as "metrics disabled".
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the subsystem's collectors. Construct with New, which also
// registers everything with the supplied registerer.
type Metrics struct {
	CacheHits   *prometheus.CounterVec // label: table
	CacheMisses *prometheus.CounterVec // label: table

	UpstreamRequests *prometheus.CounterVec // label: endpoint
	UpstreamRetries  prometheus.Counter
	UpstreamFailures *prometheus.CounterVec // label: endpoint

	QueueDepth    prometheus.Gauge
	JobsProcessed prometheus.Counter
	JobsFailed    prometheus.Counter
	JobsSkipped   prometheus.Counter
}

// New creates and registers the subsystem collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_cache_hits_total",
			Help: "Cache hits by table",
		}, []string{"table"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_cache_misses_total",
			Help: "Cache misses (absent or stale) by table",
		}, []string{"table"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_upstream_requests_total",
			Help: "Upstream HTTP requests by endpoint",
		}, []string{"endpoint"}),
		UpstreamRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "creatorstats_upstream_retries_total",
			Help: "Upstream retries after rate-limit responses",
		}),
		UpstreamFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_upstream_failures_total",
			Help: "Upstream requests that degraded to empty results",
		}, []string{"endpoint"}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "creatorstats_refresh_queue_depth",
			Help: "Pending refresh jobs",
		}),
		JobsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "creatorstats_refresh_jobs_processed_total",
			Help: "Refresh jobs completed",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "creatorstats_refresh_jobs_failed_total",
			Help: "Refresh jobs that failed and were discarded",
		}),
		JobsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "creatorstats_refresh_jobs_skipped_total",
			Help: "Refresh jobs dropped because the session had ended",
		}),
	}

	reg.MustRegister(
		m.CacheHits, m.CacheMisses,
		m.UpstreamRequests, m.UpstreamRetries, m.UpstreamFailures,
		m.QueueDepth, m.JobsProcessed, m.JobsFailed, m.JobsSkipped,
	)
	return m
}
