package downloader

import (
	"testing"

	"github.com/Belphemur/HLSCapture/internal/models"
)

func TestProgressDecoder_Next(t *testing.T) {
	tests := []struct {
		name string
		line string
		ok   bool
		want ProgressEvent
	}{
		{
			name: "progress line",
			line: "[download]  42.3% of ~ 500.00MiB at  5.23MiB/s ETA 01:23 (frag 381/900)",
			ok:   true,
			want: ProgressEvent{
				HasProgress: true, Percent: 42.3, Size: "500.00MiB", Speed: "5.23MiB/s",
				ETA: "01:23", Frag: 381, TotalFrags: 900,
			},
		},
		{
			name: "progress without tilde",
			line: "[download]   7.0% of 1.20GiB at 10.00MiB/s ETA 02:00 (frag 63/900)",
			ok:   true,
			want: ProgressEvent{
				HasProgress: true, Percent: 7, Size: "1.20GiB", Speed: "10.00MiB/s",
				ETA: "02:00", Frag: 63, TotalFrags: 900,
			},
		},
		{
			name: "final fragment progress line",
			line: "[download] 100.0% of ~ 512.00MiB at 6.00MiB/s ETA 00:00 (frag 900/900)",
			ok:   true,
			want: ProgressEvent{
				HasProgress: true, Percent: 100, Size: "512.00MiB", Speed: "6.00MiB/s",
				ETA: "00:00", Frag: 900, TotalFrags: 900,
			},
		},
		{
			name: "completion summary",
			line: "[download] 100% of  512.00MiB in 00:01:40 at 5.10MiB/s",
			ok:   true,
			want: ProgressEvent{Done: true},
		},
		{
			name: "format announcement",
			line: "[info] abc123: Downloading 1 format(s): 4500+audio",
			ok:   true,
			want: ProgressEvent{Quality: "4500+audio"},
		},
		{
			name: "fragment count",
			line: "[hlsnative] Total fragments: 900",
			ok:   true,
			want: ProgressEvent{TotalFrags: 900},
		},
		{
			name: "unrelated",
			line: "[Merger] Merging formats into \"out.mp4\"",
			ok:   false,
		},
	}

	var d ProgressDecoder
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Next(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("Next() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestProgressEvent_Apply(t *testing.T) {
	s := models.DownloadState{Quality: "720p", Percent: 10}

	ProgressEvent{TotalFrags: 900}.Apply(&s)
	if s.TotalFrags != 900 || s.Quality != "720p" || s.Percent != 10 {
		t.Fatalf("unexpected state after fragment count: %+v", s)
	}

	ProgressEvent{HasProgress: true, Percent: 50, Size: "1GiB", Speed: "1MiB/s", ETA: "10:00", Frag: 450, TotalFrags: 900}.Apply(&s)
	if s.Percent != 50 || s.Frag != 450 || s.Size != "1GiB" || s.Speed != "1MiB/s" || s.ETA != "10:00" {
		t.Fatalf("unexpected state after progress: %+v", s)
	}

	ProgressEvent{Done: true}.Apply(&s)
	if s.Percent != 100 {
		t.Fatalf("expected done to set percent to 100, got %v", s.Percent)
	}
}
