package downloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Belphemur/HLSCapture/internal/apperrors"
	"github.com/Belphemur/HLSCapture/internal/coordinator"
	"github.com/Belphemur/HLSCapture/internal/episode"
	"github.com/Belphemur/HLSCapture/internal/models"
	"github.com/Belphemur/HLSCapture/internal/testutil"
)

var pittKey = episode.Key{Slug: "the-pitt", Season: 1, Episode: 5}

func newTrackedCoordinator() *coordinator.Coordinator {
	c := coordinator.New()
	c.Track(pittKey, models.DownloadState{EpisodeKey: pittKey.String(), Status: models.StatusQueued})
	return c
}

func TestWorker_Success(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(root, "staging")
	output := filepath.Join(root, "library", "The Pitt (2025)", "Season 01", "The Pitt (2025) S01E05.mp4")

	exec := &testutil.FakeExecutor{
		Lines: []string{
			"[info] abc: Downloading 1 format(s): 4500",
			"[hlsnative] Total fragments: 900",
			"[download]  10.0% of ~ 500.00MiB at  5.00MiB/s ETA 01:30 (frag 90/900)",
			"[download]   9.0% of ~ 500.00MiB at  5.00MiB/s ETA 01:31 (frag 81/900)",
			"[download]  99.9% of ~ 500.00MiB at  5.00MiB/s ETA 00:00 (frag 899/900)",
			"[download] 100% of  500.00MiB in 00:01:40 at 5.00MiB/s",
		},
		OnRun: func(args []string) error {
			target := testutil.OutputArg(args)
			stem := strings.TrimSuffix(target, ".mp4")
			if err := os.WriteFile(target, []byte("video"), 0o644); err != nil {
				return err
			}
			if err := os.WriteFile(stem+".en.srt", []byte(testutil.GenerateSRT([]testutil.CueOptions{
				{Start: "00:00:01,000", End: "00:00:02,000", Lines: []string{"Hello."}},
			})), 0o644); err != nil {
				return err
			}
			return os.WriteFile(stem+".thumbs.vtt", []byte(testutil.SpriteVTT), 0o644)
		},
	}

	c := newTrackedCoordinator()
	w, err := NewWorker(Options{Binary: "yt-dlp", MaxHeight: 720, StagingDir: staging}, c, WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	if err := w.Run(context.Background(), Job{Key: pittKey, ManifestURL: "https://cdn.example/master.m3u8", OutputPath: output}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state, _ := c.Download(pittKey)
	if state.Status != models.StatusDone {
		t.Errorf("status = %q, want done", state.Status)
	}
	if state.Percent != 100 {
		t.Errorf("percent = %v, want 100", state.Percent)
	}
	if state.Quality != "4500" || state.TotalFrags != 900 || state.Frag != 899 {
		t.Errorf("unexpected progress fields: %+v", state)
	}

	if data, err := os.ReadFile(output); err != nil || string(data) != "video" {
		t.Fatalf("expected video at output path: %v", err)
	}
	seasonDir := filepath.Dir(output)
	if _, err := os.Stat(filepath.Join(seasonDir, "The Pitt (2025) S01E05.en.srt")); err != nil {
		t.Errorf("expected side subtitle to be moved: %v", err)
	}
	if _, err := os.Stat(filepath.Join(seasonDir, "The Pitt (2025) S01E05.thumbs.vtt")); !os.IsNotExist(err) {
		t.Errorf("expected sprite not to be moved, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(staging, "The Pitt (2025) S01E05.thumbs.vtt")); !os.IsNotExist(err) {
		t.Errorf("expected sprite to be deleted from staging, stat err = %v", err)
	}

	calls := exec.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(calls))
	}
	args := strings.Join(calls[0].Args, " ")
	for _, want := range []string{
		"-f bestvideo[ext=mp4][height<=720]/bv*[height<=720]+ba/best",
		"--merge-output-format mp4",
		"--no-write-subs",
		"--newline",
		"https://cdn.example/master.m3u8",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args %q missing %q", args, want)
		}
	}
	if got := testutil.OutputArg(calls[0].Args); got != filepath.Join(staging, "The Pitt (2025) S01E05.mp4") {
		t.Errorf("staging target = %q", got)
	}
}

func TestWorker_ToolFailure(t *testing.T) {
	root := t.TempDir()
	output := filepath.Join(root, "library", "out.mp4")
	exec := &testutil.FakeExecutor{
		Lines: []string{"[download]  12.5% of ~ 100.00MiB at 1.00MiB/s ETA 01:00 (frag 10/80)"},
		Err:   errors.New("exit status 1"),
	}

	c := newTrackedCoordinator()
	w, err := NewWorker(Options{Binary: "yt-dlp", StagingDir: filepath.Join(root, "staging")}, c, WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	err = w.Run(context.Background(), Job{Key: pittKey, ManifestURL: "https://cdn.example/x.m3u8", OutputPath: output})
	if !errors.Is(err, &apperrors.ErrDownloadFailed{}) {
		t.Fatalf("expected ErrDownloadFailed, got %v", err)
	}

	state, _ := c.Download(pittKey)
	if state.Status != models.StatusError {
		t.Errorf("status = %q, want error", state.Status)
	}
	if state.Percent != 12.5 {
		t.Errorf("percent = %v, want 12.5", state.Percent)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat err = %v", err)
	}
}

func TestWorker_MissingStagedFile(t *testing.T) {
	root := t.TempDir()
	c := newTrackedCoordinator()
	w, err := NewWorker(Options{Binary: "yt-dlp", StagingDir: filepath.Join(root, "staging")}, c, WithExecutor(&testutil.FakeExecutor{}))
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}

	if err := w.Run(context.Background(), Job{Key: pittKey, OutputPath: filepath.Join(root, "out.mp4")}); err == nil {
		t.Fatal("expected an error when the tool produced no file")
	}
	state, _ := c.Download(pittKey)
	if state.Status != models.StatusError {
		t.Errorf("status = %q, want error", state.Status)
	}
}

func TestWorker_DryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	staging := filepath.Join(root, "staging")
	output := filepath.Join(root, "library", "out.mp4")
	exec := &testutil.FakeExecutor{}

	c := newTrackedCoordinator()
	w, err := NewWorker(Options{Binary: "yt-dlp", StagingDir: staging, DryRun: true}, c, WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	if !w.DryRun() {
		t.Fatal("expected dry run worker")
	}

	if err := w.Run(context.Background(), Job{Key: pittKey, OutputPath: output}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state, _ := c.Download(pittKey)
	if state.Status != models.StatusDryRun {
		t.Errorf("status = %q, want dry_run", state.Status)
	}
	if len(exec.Calls()) != 0 {
		t.Error("expected no subprocess in dry run")
	}
	for _, p := range []string{staging, filepath.Dir(output)} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("expected %s not to exist, stat err = %v", p, err)
		}
	}
}

func TestNewWorker_Validation(t *testing.T) {
	c := coordinator.New()
	if _, err := NewWorker(Options{Binary: " ", StagingDir: "x"}, c); err == nil {
		t.Error("expected error for empty binary")
	}
	if _, err := NewWorker(Options{Binary: "yt-dlp"}, c); err == nil {
		t.Error("expected error for missing staging directory")
	}
	if _, err := NewWorker(Options{Binary: "yt-dlp", DryRun: true}, c); err != nil {
		t.Errorf("dry run should not need a staging directory: %v", err)
	}
}

func TestMoveFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "a.txt")
	dest := filepath.Join(root, "nested", "dir", "b.txt")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := moveFile(src, dest); err != nil {
		t.Fatalf("moveFile: %v", err)
	}
	if data, err := os.ReadFile(dest); err != nil || string(data) != "data" {
		t.Fatalf("unexpected destination content: %q %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("expected source to be gone, stat err = %v", err)
	}
}
