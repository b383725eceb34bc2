package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
	"github.com/Belphemur/HLSCapture/internal/client"
	"github.com/Belphemur/HLSCapture/internal/coordinator"
	"github.com/Belphemur/HLSCapture/internal/episode"
	"github.com/Belphemur/HLSCapture/internal/metrics"
	"github.com/Belphemur/HLSCapture/internal/subtitle"
)

// DefaultSubtitlePipeline implements SubtitlePipeline on top of the
// coordinator's pending queue and claim set.
type DefaultSubtitlePipeline struct {
	coord      *coordinator.Coordinator
	layout     episode.Layout
	fetcher    client.SubtitleFetcher
	classifier *subtitle.Classifier
	dryRun     bool
	logger     zerolog.Logger
}

// NewSubtitlePipeline creates a pipeline writing .srt files under layout.
func NewSubtitlePipeline(
	coord *coordinator.Coordinator,
	layout episode.Layout,
	fetcher client.SubtitleFetcher,
	classifier *subtitle.Classifier,
	dryRun bool,
	logger zerolog.Logger,
) *DefaultSubtitlePipeline {
	if classifier == nil {
		classifier = subtitle.NewClassifier(subtitle.DefaultThresholds())
	}
	return &DefaultSubtitlePipeline{
		coord:      coord,
		layout:     layout,
		fetcher:    fetcher,
		classifier: classifier,
		dryRun:     dryRun,
		logger:     logger.With().Str("component", "subtitles").Logger(),
	}
}

// Deliver implements SubtitlePipeline.
func (p *DefaultSubtitlePipeline) Deliver(ctx context.Context, key episode.Key, url string) (DeliveryOutcome, error) {
	outcome, err := p.deliver(ctx, key, url)
	switch {
	case errors.Is(err, &apperrors.ErrSubtitleResourceNotFound{}):
		metrics.SubtitlesTotal.WithLabelValues(metrics.ResultNotFound).Inc()
	case err != nil:
		metrics.SubtitlesTotal.WithLabelValues(metrics.ResultError).Inc()
	default:
		metrics.SubtitlesTotal.WithLabelValues(string(outcome)).Inc()
	}
	return outcome, err
}

func (p *DefaultSubtitlePipeline) deliver(ctx context.Context, key episode.Key, url string) (DeliveryOutcome, error) {
	log := p.logger.With().Str("ep_key", key.String()).Str("url", truncate(url, 80)).Logger()

	resolved, ok := p.coord.LookupOrEnqueue(key, url)
	if !ok {
		log.Info().Msg("Subtitle queued until the video is captured")
		return DeliveryQueued, nil
	}

	target := p.layout.SubtitlePath(resolved)
	if p.coord.Claimed(key) || fileExists(target) {
		log.Debug().Str("path", target).Msg("Subtitle already saved, skipping")
		return DeliverySkipped, nil
	}

	text, err := p.fetcher.FetchText(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("Subtitle fetch failed")
		return "", fmt.Errorf("fetch subtitle: %w", err)
	}

	verdict := p.classifier.Classify(text)
	if !verdict.Accepted {
		log.Info().Str("reason", verdict.Reason).Msg("Subtitle rejected")
		return DeliveryRejected, nil
	}

	if !p.coord.TryClaim(key) {
		log.Debug().Msg("Subtitle claimed by another delivery, skipping")
		return DeliverySkipped, nil
	}

	if subtitle.IsWebVTT(url, text) {
		text = subtitle.VTTToSRT(text)
	}

	if p.dryRun {
		log.Info().Str("path", target).Msg("Dry run, would save subtitle")
		return DeliveryDryRun, nil
	}

	if err := writeSubtitle(target, text); err != nil {
		p.coord.ReleaseClaim(key)
		log.Error().Err(err).Str("path", target).Msg("Failed to save subtitle")
		return "", err
	}
	log.Info().Str("path", target).Msg("Saved subtitle")
	return DeliverySaved, nil
}

func writeSubtitle(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create subtitle directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write subtitle: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// truncate shortens s to at most n bytes for logging, cutting on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
