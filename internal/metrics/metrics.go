package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scan metrics
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasweep_scans_total",
			Help: "Total number of corpus scans by outcome",
		},
		[]string{"outcome"}, // "completed", "aborted", "failed"
	)

	DocumentsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasweep_documents_scanned_total",
			Help: "Total number of documents whose usages were recorded",
		},
	)

	UsagesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasweep_usages_recorded_total",
			Help: "Total number of usage records written to the ledger",
		},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediasweep_scan_duration_seconds",
			Help:    "Duration of corpus scans in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900},
		},
	)

	DuplicateGroups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasweep_duplicate_groups",
			Help: "Duplicate groups found by the last completed scan",
		},
	)

	OrphanFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasweep_orphan_files",
			Help: "Orphan files found by the last completed scan",
		},
	)

	// Regeneration metrics
	VariantsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasweep_variants_generated_total",
			Help: "Total number of variant files generated",
		},
	)

	VariantFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasweep_variant_failures_total",
			Help: "Total number of variants that failed to generate",
		},
	)

	FilesDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasweep_files_deleted_total",
			Help: "Total number of files deleted by kind",
		},
		[]string{"kind"}, // "stale_variant", "ghost"
	)

	GhostsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasweep_ghosts_deleted_total",
			Help: "Total number of ghost media records deleted",
		},
	)
)

// RecordScan records the outcome of one corpus scan. Gauges only move for
// completed scans, matching the stored corpus record.
func RecordScan(aborted bool, duration time.Duration, duplicateGroups, orphans int) {
	ScanDuration.Observe(duration.Seconds())
	if aborted {
		ScansTotal.WithLabelValues("aborted").Inc()
		return
	}
	ScansTotal.WithLabelValues("completed").Inc()
	DuplicateGroups.Set(float64(duplicateGroups))
	OrphanFiles.Set(float64(orphans))
}

// RecordScanFailure counts a scan that could not run at all
func RecordScanFailure() {
	ScansTotal.WithLabelValues("failed").Inc()
}

// RecordDocument counts one recorded document and its usages
func RecordDocument(usages int) {
	DocumentsScanned.Inc()
	UsagesRecorded.Add(float64(usages))
}

// RecordRegeneration counts the outcome of one regeneration
func RecordRegeneration(generated, failed, staleDeleted int) {
	VariantsGenerated.Add(float64(generated))
	VariantFailures.Add(float64(failed))
	FilesDeleted.WithLabelValues("stale_variant").Add(float64(staleDeleted))
}

// RecordGhostDeletion counts deleted ghost records
func RecordGhostDeletion(deleted int) {
	GhostsDeleted.Add(float64(deleted))
	FilesDeleted.WithLabelValues("ghost").Add(float64(deleted))
}
