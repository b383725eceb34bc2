// Package metrics holds the service's Prometheus collectors and the listener
// that exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for CapturesTotal and SubtitlesTotal.
const (
	ResultDownloading = "downloading"
	ResultSkipped     = "skipped"
	ResultQueued      = "queued"
	ResultSaved       = "saved"
	ResultRejected    = "rejected"
	ResultNotFound    = "not_found"
	ResultError       = "error"
)

var (
	CapturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hlscapture_captures_total",
			Help: "Total number of capture requests by outcome.",
		},
		[]string{"result"},
	)

	SubtitlesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hlscapture_subtitles_total",
			Help: "Total number of subtitle submissions by outcome.",
		},
		[]string{"result"},
	)

	// DownloadsTotal counts finished downloads by final status.
	DownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hlscapture_downloads_total",
			Help: "Total number of finished downloads by final status.",
		},
		[]string{"status"},
	)

	DownloadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hlscapture_download_duration_seconds",
			Help:    "Wall time of download tool runs.",
			Buckets: []float64{30, 60, 120, 300, 600, 1200, 1800, 3600, 7200},
		},
	)

	DownloadsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hlscapture_downloads_active",
			Help: "Number of downloads currently running.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		CapturesTotal,
		SubtitlesTotal,
		DownloadsTotal,
		DownloadDuration,
		DownloadsActive,
	)
}
