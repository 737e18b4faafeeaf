// Package metrics provides Prometheus metrics for the archival engine
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ArchivalMetrics contains Prometheus metrics for archive operations
type ArchivalMetrics struct {
	registry *prometheus.Registry

	archiveOperationsTotal *prometheus.CounterVec
	archivedRecordsTotal   prometheus.Counter
	archiveDuration        *prometheus.HistogramVec
	archiveFilesPruned     prometheus.Counter

	// collectors is a slice of all collectors for easier iteration
	collectors []prometheus.Collector
}

// NewArchivalMetrics creates and registers new archival metrics
func NewArchivalMetrics(registry *prometheus.Registry) (*ArchivalMetrics, error) {
	m := &ArchivalMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// initMetrics initializes all Prometheus metrics
func (m *ArchivalMetrics) initMetrics() {
	m.archiveOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archival_operations_total",
			Help: "Total number of archive operations",
		},
		[]string{"operation", "status"}, // operation: make_archive, read_archive, prune; status: success, error, conflict
	)

	m.archivedRecordsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archival_records_total",
			Help: "Total number of log records moved into archive files",
		},
	)

	m.archiveDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "archival_operation_duration_seconds",
			Help:    "Time taken for archive operations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"operation"},
	)

	m.archiveFilesPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archival_files_pruned_total",
			Help: "Total number of archive files removed by retention pruning",
		},
	)

	m.collectors = []prometheus.Collector{
		m.archiveOperationsTotal,
		m.archivedRecordsTotal,
		m.archiveDuration,
		m.archiveFilesPruned,
	}
}

// Describe implements prometheus.Collector
func (m *ArchivalMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.collectors {
		collector.Describe(ch)
	}
}

// Collect implements prometheus.Collector
func (m *ArchivalMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.collectors {
		collector.Collect(ch)
	}
}

// RecordOperation increments the operation counter for the given
// operation and status.
func (m *ArchivalMetrics) RecordOperation(operation, status string) {
	if m == nil {
		return
	}
	m.archiveOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordArchivedRecords adds the number of records written to archives.
func (m *ArchivalMetrics) RecordArchivedRecords(count int) {
	if m == nil {
		return
	}
	m.archivedRecordsTotal.Add(float64(count))
}

// ObserveDuration records the duration of an operation in seconds.
func (m *ArchivalMetrics) ObserveDuration(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.archiveDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordPrunedFiles adds the number of archive files removed by pruning.
func (m *ArchivalMetrics) RecordPrunedFiles(count int) {
	if m == nil {
		return
	}
	m.archiveFilesPruned.Add(float64(count))
}
