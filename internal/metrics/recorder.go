// Package metrics collects Prometheus counters for a download run and can
// export them in the node_exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "isd_downloader"

// Recorder holds the counters for one run.
//
// Each Recorder owns its own registry, so several runs in one process (the
// TUI allows that) never collide on registration.
type Recorder struct {
	registry *prometheus.Registry

	listingsTotal   *prometheus.CounterVec
	archivesTotal   *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	archiveDuration prometheus.Histogram
	lastRunSuccess  prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
	}

	// status: success or error
	r.listingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "listings_total",
			Help:      "Year directory listings fetched, by status.",
		},
		[]string{"status"},
	)

	// stage: download, decompress, cleanup (errors) or done (success)
	r.archivesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "archives_total",
			Help:      "Archives processed, by final stage reached.",
		},
		[]string{"stage"},
	)

	r.bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_total",
			Help:      "Bytes written, by kind (compressed or decompressed).",
		},
		[]string{"kind"},
	)

	// Buckets: 0.1s .. ~100s
	r.archiveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "archive_duration_seconds",
			Help:      "Time spent on one download-decompress-cleanup cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 11),
		},
	)

	r.lastRunSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run resolved its station and finished, 0 otherwise.",
		},
	)

	r.registry.MustRegister(
		r.listingsTotal,
		r.archivesTotal,
		r.bytesTotal,
		r.archiveDuration,
		r.lastRunSuccess,
	)

	return r
}

// ListingFetched records a year listing outcome.
func (r *Recorder) ListingFetched(err error) {
	r.listingsTotal.WithLabelValues(status(err)).Inc()
}

// ArchiveDone records a completed cycle.
func (r *Recorder) ArchiveDone(compressed, decompressed int64, seconds float64) {
	r.archivesTotal.WithLabelValues("done").Inc()
	r.bytesTotal.WithLabelValues("compressed").Add(float64(compressed))
	r.bytesTotal.WithLabelValues("decompressed").Add(float64(decompressed))
	r.archiveDuration.Observe(seconds)
}

// ArchiveFailed records a cycle that stopped at stage.
func (r *Recorder) ArchiveFailed(stage string) {
	r.archivesTotal.WithLabelValues(stage).Inc()
}

// RunFinished records whether the run completed.
func (r *Recorder) RunFinished(ok bool) {
	if ok {
		r.lastRunSuccess.Set(1)
		return
	}
	r.lastRunSuccess.Set(0)
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
//
// The file is written atomically, as expected by the node_exporter textfile
// collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
