// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name unless configured otherwise.
const DefaultNamespace = "trade_journal"

// Import run statuses
const (
	StatusOK        = "ok"
	StatusFileError = "file_error"
	StatusFailed    = "failed"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Import metrics
	ImportRunsTotal      *prometheus.CounterVec
	ImportRowsTotal      *prometheus.CounterVec
	ImportRowErrorsTotal *prometheus.CounterVec
	ImportDuration       prometheus.Histogram
	LastSuccessfulImport prometheus.Gauge

	// Stats metrics
	StatsRunsTotal   *prometheus.CounterVec
	StatsDuration    prometheus.Histogram
	TradesAnalyzed   prometheus.Histogram
	SnapshotRowsSent prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Import metrics
		ImportRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Total number of CSV imports by status",
		}, []string{"status"}),
		ImportRowsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Total number of CSV data rows by result",
		}, []string{"result"}),
		ImportRowErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "row_errors_total",
			Help:      "Total number of row validation errors by field",
		}, []string{"field"}),
		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "CSV import duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LastSuccessfulImport: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "last_success_timestamp",
			Help:      "Unix timestamp of last successful import",
		}),

		// Stats metrics
		StatsRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "runs_total",
			Help:      "Total number of statistics reports by status",
		}, []string{"status"}),
		StatsDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "duration_seconds",
			Help:      "Report computation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TradesAnalyzed: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "trades_analyzed",
			Help:      "Number of trades per report",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 6),
		}),
		SnapshotRowsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stats",
			Name:      "snapshot_rows_total",
			Help:      "Total number of group-stat rows written to the snapshot store",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "code"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint serving g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordImport records one import run and its row counts.
func (m *Metrics) RecordImport(status string, imported, duplicates, rejected int, seconds float64, finishedUnix int64) {
	m.ImportRunsTotal.WithLabelValues(status).Inc()
	m.ImportRowsTotal.WithLabelValues("imported").Add(float64(imported))
	m.ImportRowsTotal.WithLabelValues("duplicate").Add(float64(duplicates))
	m.ImportRowsTotal.WithLabelValues("rejected").Add(float64(rejected))
	m.ImportDuration.Observe(seconds)
	if status == StatusOK {
		m.LastSuccessfulImport.Set(float64(finishedUnix))
	}
}

// RecordRowError counts one row validation error.
func (m *Metrics) RecordRowError(field string) {
	m.ImportRowErrorsTotal.WithLabelValues(field).Inc()
}

// RecordStatsRun records one report computation.
func (m *Metrics) RecordStatsRun(status string, trades int, seconds float64) {
	m.StatsRunsTotal.WithLabelValues(status).Inc()
	m.StatsDuration.Observe(seconds)
	if status == StatusOK {
		m.TradesAnalyzed.Observe(float64(trades))
	}
}

// RecordSnapshotRows counts rows written to the snapshot store.
func (m *Metrics) RecordSnapshotRows(n int) {
	m.SnapshotRowsSent.Add(float64(n))
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(route, method string, code int, seconds float64) {
	m.HTTPRequestDuration.WithLabelValues(route, method, strconv.Itoa(code)).Observe(seconds)
}
