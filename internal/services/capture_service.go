package services

import (
	"context"

	"github.com/Belphemur/HLSCapture/internal/downloader"
	"github.com/Belphemur/HLSCapture/internal/models"
)

// CaptureService is the business flow behind the HTTP endpoints.
type CaptureService interface {
	// Capture admits an episode and starts its download in the background.
	Capture(ctx context.Context, manifestURL, pageURL string) models.CaptureResult
	// SubmitSubtitle hands a subtitle URL to the pipeline in the background.
	SubmitSubtitle(ctx context.Context, subtitleURL, pageURL string) models.SubtitleResult
	// Preview reports the output name and expected quality without downloading.
	Preview(ctx context.Context, manifestURL, pageURL string) models.PreviewResult
	// Downloads lists every tracked download ordered by start time.
	Downloads() []models.DownloadState
	DryRun() bool
	// Shutdown waits for background work to finish or ctx to expire.
	Shutdown(ctx context.Context) error
}

// DownloadRunner runs one download job.
type DownloadRunner interface {
	Run(ctx context.Context, job downloader.Job) error
	DryRun() bool
}

// FormatProber lists the formats offered by a manifest.
type FormatProber interface {
	ProbeFormats(ctx context.Context, url string) ([]models.Format, error)
}
