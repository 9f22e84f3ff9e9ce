// Package metrics exposes Prometheus collectors for repost cycles.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons recorded on repost_accounts_skipped_total.
const (
	SkipReasonResolve      = "resolve"
	SkipReasonListMedia    = "list_media"
	SkipReasonEmptyCatalog = "empty_catalog"
	SkipReasonDownload     = "download"
)

// Cycle results recorded on repost_cycles_total.
const (
	CycleResultOK        = "ok"
	CycleResultFatal     = "fatal"
	CycleResultCancelled = "cancelled"
)

var (
	postsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repost_posts_total",
			Help: "Total number of published reposts by post type",
		},
		[]string{"type"},
	)

	accountsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repost_accounts_skipped_total",
			Help: "Total number of source accounts skipped during a cycle",
		},
		[]string{"reason"},
	)

	downloadFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "repost_download_failures_total",
			Help: "Total number of media files that could not be downloaded",
		},
	)

	cyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repost_cycles_total",
			Help: "Total number of repost cycles by result",
		},
		[]string{"result"},
	)

	cycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "repost_cycle_duration_seconds",
			Help:    "Duration of repost cycles",
			Buckets: []float64{1, 10, 60, 600, 3600, 4 * 3600, 12 * 3600, 24 * 3600},
		},
	)
)

func init() {
	prometheus.MustRegister(postsTotal)
	prometheus.MustRegister(accountsSkipped)
	prometheus.MustRegister(downloadFailures)
	prometheus.MustRegister(cyclesTotal)
	prometheus.MustRegister(cycleDuration)
}

// RecordPost counts a published post of the given type.
func RecordPost(postType string) {
	postsTotal.WithLabelValues(postType).Inc()
}

// RecordSkip counts an account skipped for reason.
func RecordSkip(reason string) {
	accountsSkipped.WithLabelValues(reason).Inc()
}

// RecordDownloadFailure counts one dropped file.
func RecordDownloadFailure() {
	downloadFailures.Inc()
}

// RecordCycle counts a finished cycle and observes its duration.
func RecordCycle(result string, elapsed time.Duration) {
	cyclesTotal.WithLabelValues(result).Inc()
	cycleDuration.Observe(elapsed.Seconds())
}
