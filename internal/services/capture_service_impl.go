package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
	"github.com/Belphemur/HLSCapture/internal/coordinator"
	"github.com/Belphemur/HLSCapture/internal/downloader"
	"github.com/Belphemur/HLSCapture/internal/episode"
	"github.com/Belphemur/HLSCapture/internal/metadata"
	"github.com/Belphemur/HLSCapture/internal/metrics"
	"github.com/Belphemur/HLSCapture/internal/models"
)

const (
	msgUnparseablePage = "Could not parse show/season/episode from page URL"
	msgDuplicate       = "duplicate episode"
	msgUnparseableSub  = "cannot parse episode"
)

// Dependencies wires a DefaultCaptureService.
type Dependencies struct {
	Coordinator *coordinator.Coordinator
	Layout      episode.Layout
	Metadata    metadata.Lookup
	Worker      DownloadRunner
	Prober      FormatProber
	Subtitles   SubtitlePipeline
	// MaxHeight caps the resolution reported by Preview.
	MaxHeight int
	Logger    zerolog.Logger
}

// DefaultCaptureService implements CaptureService. Long-running work runs in
// goroutines owned by the service so that Shutdown can wait for them.
type DefaultCaptureService struct {
	coord     *coordinator.Coordinator
	layout    episode.Layout
	metadata  metadata.Lookup
	worker    DownloadRunner
	prober    FormatProber
	subtitles SubtitlePipeline
	maxHeight int
	logger    zerolog.Logger

	wg sync.WaitGroup
}

// NewCaptureService creates the service. Coordinator, Worker and Subtitles
// are required.
func NewCaptureService(deps Dependencies) (*DefaultCaptureService, error) {
	if deps.Coordinator == nil || deps.Worker == nil || deps.Subtitles == nil {
		return nil, errors.New("capture service requires a coordinator, a worker and a subtitle pipeline")
	}
	if deps.MaxHeight <= 0 {
		deps.MaxHeight = 1080
	}
	return &DefaultCaptureService{
		coord:     deps.Coordinator,
		layout:    deps.Layout,
		metadata:  deps.Metadata,
		worker:    deps.Worker,
		prober:    deps.Prober,
		subtitles: deps.Subtitles,
		maxHeight: deps.MaxHeight,
		logger:    deps.Logger.With().Str("component", "capture").Logger(),
	}, nil
}

// DryRun reports whether downloads and subtitle writes are simulated.
func (s *DefaultCaptureService) DryRun() bool {
	return s.worker.DryRun()
}

// Downloads implements CaptureService.
func (s *DefaultCaptureService) Downloads() []models.DownloadState {
	return s.coord.Downloads()
}

// Capture implements CaptureService. The response is returned as soon as the
// episode is registered; the download itself runs in the background.
func (s *DefaultCaptureService) Capture(ctx context.Context, manifestURL, pageURL string) models.CaptureResult {
	log := s.logger.With().Str("page_url", pageURL).Logger()
	log.Info().Str("m3u8_url", truncate(manifestURL, 100)).Msg("Captured manifest")

	info := episode.ParsePageURL(pageURL)
	key, ok := info.Key()
	if !ok || !info.Complete() {
		log.Warn().Msg(msgUnparseablePage)
		metrics.CapturesTotal.WithLabelValues(metrics.ResultError).Inc()
		return models.CaptureResult{Status: models.ResponseError, Message: msgUnparseablePage}
	}
	log = log.With().Str("ep_key", key.String()).Logger()

	if !s.coord.Admit(key) {
		log.Info().Msg("Skipping duplicate episode")
		metrics.CapturesTotal.WithLabelValues(metrics.ResultSkipped).Inc()
		return models.CaptureResult{Status: models.ResponseSkipped, Message: msgDuplicate}
	}

	resolved := episode.Resolved{
		ShowTitle: s.showTitle(ctx, info.ShowName),
		Season:    key.Season,
		Episode:   key.Episode,
	}
	filename := s.layout.Filename(resolved)
	output := s.layout.VideoPath(resolved)

	s.coord.Track(key, models.DownloadState{
		EpisodeKey: key.String(),
		Filename:   filename,
		Show:       resolved.ShowTitle,
		EpisodeTag: resolved.Tag(),
		Status:     models.StatusQueued,
		Started:    float64(time.Now().UnixNano()) / float64(time.Second),
	})
	pending := s.coord.Resolve(key, resolved)
	log.Info().Str("output", output).Int("pending_subtitles", len(pending)).Msg("Episode resolved")

	for _, url := range pending {
		s.deliverSubtitle(key, url)
	}
	s.goBackground("download "+key.String(), func(ctx context.Context) {
		s.download(ctx, key, downloader.Job{Key: key, ManifestURL: manifestURL, OutputPath: output})
	})

	metrics.CapturesTotal.WithLabelValues(metrics.ResultDownloading).Inc()
	return models.CaptureResult{Status: models.ResponseDownloading, Message: filename}
}

// SubmitSubtitle implements CaptureService.
func (s *DefaultCaptureService) SubmitSubtitle(_ context.Context, subtitleURL, pageURL string) models.SubtitleResult {
	info := episode.ParsePageURL(pageURL)
	key, ok := info.Key()
	if !ok {
		s.logger.Debug().Str("page_url", pageURL).Msg("Subtitle for unparseable page ignored")
		metrics.SubtitlesTotal.WithLabelValues(metrics.ResultSkipped).Inc()
		return models.SubtitleResult{Status: models.ResponseSkipped, Message: msgUnparseableSub}
	}

	s.logger.Info().Str("ep_key", key.String()).Str("url", truncate(subtitleURL, 80)).Msg("Subtitle URL captured")
	s.deliverSubtitle(key, subtitleURL)
	return models.SubtitleResult{Status: models.ResponseOK}
}

// Preview implements CaptureService. A failed probe yields an empty format
// list and an "unknown" quality.
func (s *DefaultCaptureService) Preview(ctx context.Context, manifestURL, pageURL string) models.PreviewResult {
	info := episode.ParsePageURL(pageURL)
	key, ok := info.Key()
	if !ok || !info.Complete() {
		return models.PreviewResult{Status: models.ResponseError, Message: msgUnparseablePage}
	}

	resolved := episode.Resolved{
		ShowTitle: s.showTitle(ctx, info.ShowName),
		Season:    key.Season,
		Episode:   key.Episode,
	}

	var formats []models.Format
	if s.prober != nil {
		probed, err := s.prober.ProbeFormats(ctx, manifestURL)
		if err != nil {
			s.logger.Warn().Err(err).Str("m3u8_url", truncate(manifestURL, 100)).Msg("Format probe failed")
		} else {
			formats = probed
		}
	}
	if formats == nil {
		formats = []models.Format{}
	}

	result := models.PreviewResult{
		Status:     models.ResponseOK,
		ShowTitle:  resolved.ShowTitle,
		Season:     resolved.Season,
		Episode:    resolved.Episode,
		EpisodeTag: resolved.Tag(),
		Filename:   s.layout.Filename(resolved),
		Quality:    downloader.BestFormatLabel(formats, s.maxHeight),
		Formats:    formats,
	}
	if best, ok := downloader.BestFormat(formats, s.maxHeight); ok {
		result.Tier = best.Quality()
	}
	s.logger.Info().Str("filename", result.Filename).Str("quality", result.Quality).Msg("Preview")
	return result
}

// Shutdown implements CaptureService.
func (s *DefaultCaptureService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background tasks: %w", ctx.Err())
	}
}

// showTitle resolves the folder title for a guessed show name, falling back
// to the sanitised guess when the metadata lookup fails.
func (s *DefaultCaptureService) showTitle(ctx context.Context, guess string) string {
	if s.metadata == nil {
		return episode.ShowTitle(guess, "")
	}
	meta, err := s.metadata.LookupShow(ctx, guess)
	if err != nil {
		if errors.Is(err, &apperrors.ErrNotFound{}) {
			s.logger.Info().Str("show", guess).Msg("No metadata match, using guessed title")
		} else {
			s.logger.Warn().Err(err).Str("show", guess).Msg("Metadata lookup failed, using guessed title")
		}
		return episode.ShowTitle(guess, "")
	}
	title := episode.ShowTitle(meta.Title, meta.Year)
	s.logger.Info().Str("show", guess).Str("title", title).Msg("Metadata match")
	return title
}

func (s *DefaultCaptureService) deliverSubtitle(key episode.Key, url string) {
	s.goBackground("subtitle "+key.String(), func(ctx context.Context) {
		// Failures are logged by the pipeline and otherwise discarded.
		_, _ = s.subtitles.Deliver(ctx, key, url)
	})
}

func (s *DefaultCaptureService) download(ctx context.Context, key episode.Key, job downloader.Job) {
	metrics.DownloadsActive.Inc()
	defer metrics.DownloadsActive.Dec()

	start := time.Now()
	err := s.worker.Run(ctx, job)
	if !s.worker.DryRun() {
		metrics.DownloadDuration.Observe(time.Since(start).Seconds())
	}

	state, _ := s.coord.Download(key)
	metrics.DownloadsTotal.WithLabelValues(string(state.Status)).Inc()

	if err != nil {
		s.logger.Error().Err(err).Str("ep_key", key.String()).Msg("Download failed")
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("ep_key", key.String())
			scope.SetTag("output", job.OutputPath)
			sentry.CaptureException(err)
		})
		return
	}
	s.logger.Info().Str("ep_key", key.String()).Str("status", string(state.Status)).Msg("Download finished")
}

// goBackground runs fn in a tracked goroutine. Panics are recovered, logged
// and reported to Sentry.
func (s *DefaultCaptureService) goBackground(name string, fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().
					Interface("panic", r).
					Str("task", name).
					Bytes("stack", debug.Stack()).
					Msg("Recovered panic in background task")
				sentry.CurrentHub().Recover(r)
			}
		}()
		fn(context.Background())
	}()
}
