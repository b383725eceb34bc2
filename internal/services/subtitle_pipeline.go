package services

import (
	"context"

	"github.com/Belphemur/HLSCapture/internal/episode"
)

// DeliveryOutcome describes what happened to one subtitle delivery.
type DeliveryOutcome string

const (
	// DeliveryQueued means the episode was not resolved yet and the URL waits
	// in the pending queue.
	DeliveryQueued DeliveryOutcome = "queued"
	// DeliverySkipped means a subtitle was already saved or claimed.
	DeliverySkipped DeliveryOutcome = "skipped"
	// DeliveryRejected means the classifier did not accept the text.
	DeliveryRejected DeliveryOutcome = "rejected"
	DeliverySaved    DeliveryOutcome = "saved"
	// DeliveryDryRun means the subtitle was claimed and converted but not written.
	DeliveryDryRun DeliveryOutcome = "dry_run"
)

// SubtitlePipeline fetches, classifies and saves subtitles for an episode.
type SubtitlePipeline interface {
	// Deliver handles one subtitle URL for key. Fetch and write failures are
	// returned; rejections and duplicates are reported through the outcome.
	Deliver(ctx context.Context, key episode.Key, url string) (DeliveryOutcome, error)
}
