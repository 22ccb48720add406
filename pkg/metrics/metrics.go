package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Catalog metrics
	BlobsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vaultkeep_blobs_total",
			Help: "Total number of distinct content blobs stored",
		},
	)

	BytesDistinct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vaultkeep_bytes_distinct",
			Help: "Sum of blob sizes stored, counting each digest once",
		},
	)

	BytesReferenced = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vaultkeep_bytes_referenced",
			Help: "Sum of blob sizes across all file entries, counting shared digests once per reference",
		},
	)

	SnapshotsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vaultkeep_snapshots_total",
			Help: "Total number of snapshots currently retained",
		},
	)

	OrphansReclaimed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultkeep_orphans_reclaimed_total",
			Help: "Total number of content blobs reclaimed by prune",
		},
	)

	VerifyCorruptionTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vaultkeep_verify_corruption_total",
			Help: "Total number of file entries reported corrupt by verify",
		},
	)

	// Operation metrics
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaultkeep_snapshot_duration_seconds",
			Help:    "Time taken to create a snapshot in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RestoreDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaultkeep_restore_duration_seconds",
			Help:    "Time taken to restore a snapshot in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PruneDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaultkeep_prune_duration_seconds",
			Help:    "Time taken to prune a snapshot in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	VerifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vaultkeep_verify_duration_seconds",
			Help:    "Time taken to verify the store in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	FilesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vaultkeep_files_processed_total",
			Help: "Total number of files processed by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(BlobsTotal)
	prometheus.MustRegister(BytesDistinct)
	prometheus.MustRegister(BytesReferenced)
	prometheus.MustRegister(SnapshotsTotal)
	prometheus.MustRegister(OrphansReclaimed)
	prometheus.MustRegister(VerifyCorruptionTotal)
	prometheus.MustRegister(SnapshotDuration)
	prometheus.MustRegister(RestoreDuration)
	prometheus.MustRegister(PruneDuration)
	prometheus.MustRegister(VerifyDuration)
	prometheus.MustRegister(FilesProcessedTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
