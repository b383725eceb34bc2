package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/Belphemur/HLSCapture/internal/api"
	"github.com/Belphemur/HLSCapture/internal/cache"
	"github.com/Belphemur/HLSCapture/internal/client"
	"github.com/Belphemur/HLSCapture/internal/config"
	"github.com/Belphemur/HLSCapture/internal/coordinator"
	"github.com/Belphemur/HLSCapture/internal/downloader"
	"github.com/Belphemur/HLSCapture/internal/episode"
	"github.com/Belphemur/HLSCapture/internal/metadata"
	"github.com/Belphemur/HLSCapture/internal/metrics"
	"github.com/Belphemur/HLSCapture/internal/models"
	"github.com/Belphemur/HLSCapture/internal/services"
	"github.com/Belphemur/HLSCapture/internal/subtitle"
)

const shutdownTimeout = 30 * time.Second

type runOptions struct {
	configFile string
	apply      bool
	flags      *pflag.FlagSet
}

func run(parent context.Context, opts runOptions) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.LoadConfig(opts.configFile, opts.flags)
	if err != nil {
		return err
	}
	if opts.apply {
		cfg.DryRun = false
	}
	config.SetConfig(cfg)
	logger := config.GetLogger()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:     cfg.SentryDSN,
			Release: "hlscapture@" + version,
		}); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialise Sentry")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	service, metaCache, err := buildService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if metaCache != nil {
			_ = metaCache.Close()
		}
	}()

	logger.Info().
		Bool("dry_run", cfg.DryRun).
		Str("output_dir", cfg.OutputDir).
		Str("address", cfg.Server.Address).
		Int("port", cfg.Server.Port).
		Msg("Application started with configuration")
	if cfg.DryRun {
		logger.Warn().Msg("Dry run mode: nothing will be downloaded or written, pass --apply to capture")
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	apiServer := api.NewServer(cfg.Server.Address, cfg.Server.Port, service, logger)
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = metrics.NewHTTPServer(cfg.Server.Address, cfg.Metrics.Port)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if metricsServer != nil {
		g.Go(func() error {
			logger.Info().Str("address", metricsServer.Addr).Msg("Starting Prometheus metrics HTTP server")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Failed to shutdown API server")
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Failed to shutdown metrics server")
			}
		}
		if err := service.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("Background tasks still running at exit")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("Server stopped with error")
		return err
	}
	logger.Info().Msg("Server stopped gracefully")
	return nil
}

// buildService wires the capture service from cfg. The returned cache, when
// not nil, must be closed by the caller.
func buildService(cfg *config.Config, logger zerolog.Logger) (services.CaptureService, cache.Cache, error) {
	httpClient := client.NewHTTPClient(cfg)
	coord := coordinator.New()
	layout := episode.Layout{Root: cfg.OutputDir}

	var metaCache cache.Cache
	if cfg.Metadata.OMDbAPIKey != "" {
		c, err := cache.FromConfig(cfg, "metadata")
		if err != nil {
			logger.Warn().Err(err).Str("provider", cfg.Cache.Provider).Msg("Metadata cache unavailable, lookups will not be cached")
		} else {
			metaCache = c
		}
	} else {
		logger.Warn().Msg("No OMDb API key configured, show titles will be guessed from the page URL")
	}
	lookup := metadata.NewClient(httpClient, metadata.Options{
		BaseURL: cfg.Metadata.BaseURL,
		APIKey:  cfg.Metadata.OMDbAPIKey,
		Timeout: config.ParseDuration("metadata.timeout", cfg.Metadata.Timeout, 10*time.Second),
		Logger:  logger.With().Str("component", "metadata").Logger(),
	}, metaCache)

	maxHeight := maxQuality(cfg.Downloader.MaxHeight, logger).Height()
	worker, err := downloader.NewWorker(downloader.Options{
		Binary:     cfg.Downloader.Binary,
		MaxHeight:  maxHeight,
		StagingDir: cfg.StagingDir,
		DryRun:     cfg.DryRun,
	}, coord, downloader.WithLogger(logger.With().Str("component", "downloader").Logger()))
	if err != nil {
		return nil, metaCache, err
	}
	prober := downloader.NewProber(
		cfg.Downloader.Binary,
		config.ParseDuration("downloader.probe_timeout", cfg.Downloader.ProbeTimeout, 30*time.Second),
		nil,
	)

	fetcher := client.NewSubtitleFetcher(
		httpClient,
		config.ParseDuration("subtitles.fetch_timeout", cfg.Subtitles.FetchTimeout, 15*time.Second),
		cfg.Subtitles.MaxBytes,
	)
	classifier := subtitle.NewClassifier(subtitle.Thresholds{
		SampleLines:       cfg.Classifier.SampleLines,
		MaxMojibake:       cfg.Classifier.MaxMojibake,
		MaxLatin1Symbols:  cfg.Classifier.MaxLatin1Symbols,
		MaxAccentedRatio:  cfg.Classifier.MaxAccentedRatio,
		MaxForeignMarkers: cfg.Classifier.MaxForeignMarkers,
		MinASCIIRatio:     cfg.Classifier.MinASCIIRatio,
	})

	service, err := services.NewCaptureService(services.Dependencies{
		Coordinator: coord,
		Layout:      layout,
		Metadata:    lookup,
		Worker:      worker,
		Prober:      prober,
		Subtitles:   services.NewSubtitlePipeline(coord, layout, fetcher, classifier, cfg.DryRun, logger),
		MaxHeight:   maxHeight,
		Logger:      logger,
	})
	if err != nil {
		return nil, metaCache, err
	}
	return service, metaCache, nil
}

// maxQuality reads the download height cap, "720p" or "720". Values that are
// not a known tier fall back to 1080p.
func maxQuality(value string, logger zerolog.Logger) models.Quality {
	q := models.ParseQuality(value)
	if q == models.QualityUnknown {
		logger.Warn().Str("max_height", value).Msg("Unknown downloader.max_height, using 1080p")
		return models.Quality1080p
	}
	return q
}
