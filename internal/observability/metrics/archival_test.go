package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArchivalMetrics_RegistersAndRecords(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewArchivalMetrics(registry)
	require.NoError(t, err)

	m.RecordOperation("make_archive", "success")
	m.RecordArchivedRecords(42)
	m.ObserveDuration("make_archive", 0.25)
	m.RecordPrunedFiles(3)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["archival_operations_total"])
	assert.True(t, names["archival_records_total"])
	assert.True(t, names["archival_operation_duration_seconds"])
	assert.True(t, names["archival_files_pruned_total"])
}

func TestNewArchivalMetrics_DoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewArchivalMetrics(registry)
	require.NoError(t, err)
	_, err = NewArchivalMetrics(registry)
	assert.Error(t, err)
}

func TestArchivalMetrics_NilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *ArchivalMetrics
	assert.NotPanics(t, func() {
		m.RecordOperation("make_archive", "success")
		m.RecordArchivedRecords(1)
		m.ObserveDuration("prune", 0.1)
		m.RecordPrunedFiles(1)
	})
}
