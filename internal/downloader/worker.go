// Package downloader drives the external download tool for one episode,
// streams its progress into the tracker and files the result in the library.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
	"github.com/Belphemur/HLSCapture/internal/episode"
	"github.com/Belphemur/HLSCapture/internal/models"
	"github.com/Belphemur/HLSCapture/internal/subtitle"
)

// ProgressSink receives state changes for a download.
type ProgressSink interface {
	UpdateDownload(key episode.Key, fn func(*models.DownloadState)) (models.DownloadState, bool)
}

// Job describes one episode download.
type Job struct {
	Key         episode.Key
	ManifestURL string
	OutputPath  string
}

// Options configures a Worker.
type Options struct {
	Binary     string
	MaxHeight  int
	StagingDir string
	DryRun     bool
}

// Option customises a Worker.
type Option func(*Worker)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(w *Worker) {
		if exec != nil {
			w.exec = exec
		}
	}
}

// WithLogger sets the logger used by the worker.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// Worker runs download jobs. Run may be called concurrently for different keys.
type Worker struct {
	opts    Options
	exec    Executor
	sink    ProgressSink
	decoder ProgressDecoder
	logger  zerolog.Logger
}

// NewWorker creates a worker reporting progress to sink.
func NewWorker(opts Options, sink ProgressSink, options ...Option) (*Worker, error) {
	opts.Binary = strings.TrimSpace(opts.Binary)
	if opts.Binary == "" {
		return nil, errors.New("download tool binary required")
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = 1080
	}
	if !opts.DryRun && opts.StagingDir == "" {
		return nil, errors.New("staging directory required")
	}
	w := &Worker{
		opts:   opts,
		exec:   commandExecutor{},
		sink:   sink,
		logger: zerolog.Nop(),
	}
	for _, o := range options {
		o(w)
	}
	return w, nil
}

// DryRun reports whether the worker only simulates downloads.
func (w *Worker) DryRun() bool {
	return w.opts.DryRun
}

// Args returns the download tool arguments for fetching url into target.
func (w *Worker) Args(url, target string) []string {
	h := w.opts.MaxHeight
	return []string{
		"-f", fmt.Sprintf("bestvideo[ext=mp4][height<=%d]/bv*[height<=%d]+ba/best", h, h),
		"--merge-output-format", "mp4",
		"--postprocessor-args", "ffmpeg:-movflags +faststart",
		"--no-write-subs",
		"--newline",
		"-o", target,
		url,
	}
}

// Run downloads job.ManifestURL into the staging directory and moves the
// result to job.OutputPath. The final status is recorded in the sink; the
// returned error is an *apperrors.ErrDownloadFailed when the tool failed.
func (w *Worker) Run(ctx context.Context, job Job) error {
	log := w.logger.With().Str("ep_key", job.Key.String()).Logger()

	if w.opts.DryRun {
		w.setStatus(job.Key, models.StatusDryRun)
		log.Info().Str("output", job.OutputPath).Msg("Dry run, would download")
		return nil
	}

	if err := os.MkdirAll(w.opts.StagingDir, 0o755); err != nil {
		w.setStatus(job.Key, models.StatusError)
		return fmt.Errorf("create staging directory: %w", err)
	}
	staged := filepath.Join(w.opts.StagingDir, filepath.Base(job.OutputPath))

	w.setStatus(job.Key, models.StatusDownloading)
	log.Info().Str("staging", staged).Msg("Starting download")

	err := w.exec.Run(ctx, w.opts.Binary, w.Args(job.ManifestURL, staged), func(line string) {
		event, ok := w.decoder.Next(line)
		if !ok {
			return
		}
		state, _ := w.sink.UpdateDownload(job.Key, event.Apply)
		if event.Quality != "" {
			log.Info().Str("quality", event.Quality).Msg("Format selected")
		}
		if event.HasProgress && (event.Frag%50 == 0 || event.Frag == event.TotalFrags) {
			log.Debug().
				Float64("percent", state.Percent).
				Int("frag", event.Frag).
				Int("total_frags", event.TotalFrags).
				Str("speed", event.Speed).
				Str("eta", event.ETA).
				Msg("Download progress")
		}
	})
	if err != nil {
		w.setStatus(job.Key, models.StatusError)
		return toDownloadError(err)
	}

	w.setStatus(job.Key, models.StatusMoving)
	if err := moveFile(staged, job.OutputPath); err != nil {
		w.setStatus(job.Key, models.StatusError)
		return fmt.Errorf("move download: %w", err)
	}
	log.Info().Str("output", job.OutputPath).Msg("Moved download to library")

	w.moveSideFiles(staged, filepath.Dir(job.OutputPath), log)

	w.sink.UpdateDownload(job.Key, func(s *models.DownloadState) {
		s.Status = models.StatusDone
		s.Percent = 100
	})
	return nil
}

func (w *Worker) setStatus(key episode.Key, status models.DownloadStatus) {
	w.sink.UpdateDownload(key, func(s *models.DownloadState) {
		s.Status = status
	})
}

// moveSideFiles moves subtitle files written next to the staged video into
// destDir. Thumbnail sprite maps are deleted instead.
func (w *Worker) moveSideFiles(staged, destDir string, log zerolog.Logger) {
	stem := strings.TrimSuffix(filepath.Base(staged), filepath.Ext(staged))
	dir := filepath.Dir(staged)

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("Failed to scan staging directory")
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || !strings.HasPrefix(name, stem) || (ext != ".srt" && ext != ".vtt") {
			continue
		}
		src := filepath.Join(dir, name)

		content, err := os.ReadFile(src)
		if err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Failed to read side file")
			continue
		}
		if subtitle.IsThumbnailSprite(string(content)) {
			if err := os.Remove(src); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("Failed to delete thumbnail sprite")
				continue
			}
			log.Info().Str("file", name).Msg("Deleted thumbnail sprite")
			continue
		}
		if err := moveFile(src, filepath.Join(destDir, name)); err != nil {
			log.Warn().Err(err).Str("file", name).Msg("Failed to move side file")
			continue
		}
		log.Info().Str("file", name).Msg("Moved side file")
	}
}

func toDownloadError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &apperrors.ErrDownloadFailed{ExitCode: exitErr.ExitCode(), Err: err}
	}
	return &apperrors.ErrDownloadFailed{ExitCode: -1, Err: err}
}

// moveFile renames src to dest, creating dest's parents. When the rename
// fails (for example across devices) the file is copied and src removed.
func moveFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("copy %s: %w", filepath.Base(src), err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return err
	}
	_ = in.Close()
	return os.Remove(src)
}
