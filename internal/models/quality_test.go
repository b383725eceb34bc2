// Tests for quality.go and format.go: Quality String(), ParseQuality(),
// QualityFromHeight(), JSON encoding inside a struct, and Format parsing.
package models

import (
	"encoding/json"
	"testing"
)

func TestQuality_String(t *testing.T) {
	tests := []struct {
		name    string
		quality Quality
		want    string
	}{
		{"unknown", QualityUnknown, "unknown"},
		{"360p", Quality360p, "360p"},
		{"720p", Quality720p, "720p"},
		{"1080p", Quality1080p, "1080p"},
		{"1440p", Quality1440p, "1440p"},
		{"2160p", Quality2160p, "2160p"},
		{"invalid high value", Quality(99), "unknown"},
		{"negative value", Quality(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.quality.String(); got != tt.want {
				t.Errorf("Quality(%d).String() = %q, want %q", tt.quality, got, tt.want)
			}
		})
	}
}

func TestParseQuality(t *testing.T) {
	tests := []struct {
		input string
		want  Quality
	}{
		{"1080p", Quality1080p},
		{"1080P", Quality1080p},
		{" 720 ", Quality720p},
		{"2160p", Quality2160p},
		{"999p", QualityUnknown},
		{"hd", QualityUnknown},
		{"", QualityUnknown},
	}
	for _, tt := range tests {
		if got := ParseQuality(tt.input); got != tt.want {
			t.Errorf("ParseQuality(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestQualityFromHeight(t *testing.T) {
	tests := []struct {
		height int
		want   Quality
	}{
		{240, QualityUnknown},
		{360, Quality360p},
		{536, Quality480p},
		{720, Quality720p},
		{1080, Quality1080p},
		{1200, Quality1080p},
		{4320, Quality2160p},
	}
	for _, tt := range tests {
		if got := QualityFromHeight(tt.height); got != tt.want {
			t.Errorf("QualityFromHeight(%d) = %v, want %v", tt.height, got, tt.want)
		}
	}
}

func TestQuality_JSONInStruct(t *testing.T) {
	type wrapper struct {
		Quality Quality `json:"quality"`
	}

	data, err := json.Marshal(wrapper{Quality: Quality720p})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"quality":"720p"}` {
		t.Errorf("Marshal = %s", data)
	}

	data, err = json.Marshal(wrapper{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"quality":"unknown"}` {
		t.Errorf("Marshal unknown = %s", data)
	}
}

func TestFormat_Dimensions(t *testing.T) {
	tests := []struct {
		resolution string
		w, h       int
		ok         bool
		quality    Quality
	}{
		{"1920x1080", 1920, 1080, true, Quality1080p},
		{"1280x720", 1280, 720, true, Quality720p},
		{"audio", 0, 0, false, QualityUnknown},
		{"axb", 0, 0, false, QualityUnknown},
	}
	for _, tt := range tests {
		f := Format{Resolution: tt.resolution}
		w, h, ok := f.Dimensions()
		if w != tt.w || h != tt.h || ok != tt.ok {
			t.Errorf("Dimensions(%q) = %d, %d, %v", tt.resolution, w, h, ok)
		}
		if got := f.Quality(); got != tt.quality {
			t.Errorf("Quality(%q) = %v, want %v", tt.resolution, got, tt.quality)
		}
	}
}

func TestDownloadStatus_Terminal(t *testing.T) {
	for _, s := range []DownloadStatus{StatusDone, StatusError, StatusDryRun} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []DownloadStatus{StatusQueued, StatusDownloading, StatusMoving} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
