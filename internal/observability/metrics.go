// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Acquisition metrics
	HoldersFetched      prometheus.Counter
	FetchErrors         *prometheus.CounterVec
	ReserveTicks        prometheus.Counter
	ReserveTicksDropped prometheus.Counter
	StreamReconnects    prometheus.Counter

	// Analysis metrics
	AnalysisRunsTotal *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
	FlaggedHolders    prometheus.Gauge
	HHIValue          prometheus.Gauge

	// Storage metrics
	SnapshotsPersisted  prometheus.Counter
	TimeseriesPersisted prometheus.Counter
	StorageErrors       *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRun prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new Metrics instance registered on its own registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_holder_lab"
	}
	reg := prometheus.NewRegistry()
	return newMetrics(namespace, reg)
}

func newMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		HoldersFetched: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "holders_fetched_total",
			Help:      "Total number of holder records fetched from the provider",
		}),
		FetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "fetch_errors_total",
			Help:      "Total number of provider fetch failures by source",
		}, []string{"source"}),
		ReserveTicks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "reserve_ticks_total",
			Help:      "Total number of live reserve updates received",
		}),
		ReserveTicksDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "reserve_ticks_dropped_total",
			Help:      "Total number of reserve updates dropped by a lagging consumer",
		}),
		StreamReconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acquisition",
			Name:      "stream_reconnects_total",
			Help:      "Total number of reserve stream reconnect attempts",
		}),

		AnalysisRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total number of analysis runs by outcome",
		}, []string{"status"}),
		AnalysisDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "run_duration_seconds",
			Help:      "Duration of a full analysis run",
			Buckets:   prometheus.DefBuckets,
		}),
		FlaggedHolders: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "flagged_holders",
			Help:      "Flagged whale count from the latest run",
		}),
		HHIValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "hhi",
			Help:      "Herfindahl-Hirschman index from the latest run",
		}),

		SnapshotsPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "snapshots_persisted_total",
			Help:      "Total number of holder snapshots written",
		}),
		TimeseriesPersisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "timeseries_points_persisted_total",
			Help:      "Total number of concentration points written",
		}),
		StorageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "errors_total",
			Help:      "Total number of storage failures by store",
		}, []string{"store"}),

		LastSuccessfulRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp_seconds",
			Help:      "Unix timestamp of the last successful analysis run",
		}),
	}
	m.registry = reg
	return m
}

// Handler returns an HTTP handler serving the metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
