package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func getGaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func getCounterVecValue(cv *prometheus.CounterVec, labels ...string) float64 {
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getHistogramCount(h prometheus.Histogram) uint64 {
	var m dto.Metric
	if err := h.(prometheus.Metric).Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetrics_CapturesTotal(t *testing.T) {
	for _, result := range []string{ResultDownloading, ResultSkipped, ResultError} {
		before := getCounterVecValue(CapturesTotal, result)
		CapturesTotal.WithLabelValues(result).Inc()
		if after := getCounterVecValue(CapturesTotal, result); after != before+1 {
			t.Errorf("%s: expected counter to increment by 1, got diff %.0f", result, after-before)
		}
	}
}

func TestMetrics_SubtitlesTotal(t *testing.T) {
	before := getCounterVecValue(SubtitlesTotal, ResultQueued)
	SubtitlesTotal.WithLabelValues(ResultQueued).Inc()
	SubtitlesTotal.WithLabelValues(ResultSaved).Inc()

	if after := getCounterVecValue(SubtitlesTotal, ResultQueued); after != before+1 {
		t.Errorf("Expected queued counter to increment by 1, got diff %.0f", after-before)
	}
}

func TestMetrics_DownloadsActive(t *testing.T) {
	before := getGaugeValue(DownloadsActive)

	DownloadsActive.Inc()
	DownloadsActive.Inc()
	if got := getGaugeValue(DownloadsActive); got != before+2 {
		t.Errorf("Expected gauge %.0f, got %.0f", before+2, got)
	}

	DownloadsActive.Dec()
	DownloadsActive.Dec()
	if got := getGaugeValue(DownloadsActive); got != before {
		t.Errorf("Expected gauge back to %.0f, got %.0f", before, got)
	}
}

func TestMetrics_DownloadDuration(t *testing.T) {
	before := getHistogramCount(DownloadDuration)
	DownloadDuration.Observe(42)
	if got := getHistogramCount(DownloadDuration); got != before+1 {
		t.Errorf("Expected one new observation, got %d", got-before)
	}
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer("127.0.0.1", 0)
	if srv.Addr != "127.0.0.1:9090" {
		t.Errorf("Expected default port 9090, got %s", srv.Addr)
	}

	DownloadsTotal.WithLabelValues("done").Inc()
	CapturesTotal.WithLabelValues(ResultSkipped).Add(0)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"hlscapture_downloads_total", "hlscapture_downloads_active", "hlscapture_captures_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("Expected %s in scrape output", name)
		}
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 outside /metrics, got %d", rec.Code)
	}
}
