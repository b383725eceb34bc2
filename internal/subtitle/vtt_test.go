package subtitle

import (
	"testing"

	"github.com/Belphemur/HLSCapture/internal/testutil"
)

func TestVTTToSRT(t *testing.T) {
	vtt := testutil.GenerateVTT([]string{"Kind: captions", "Language: en"}, []testutil.CueOptions{
		{Start: "00:01.000", End: "00:04.500", Lines: []string{"Get me a chest tube.", "<i>Now!</i>"}},
		{ID: "cue-2", Start: "01:02:03.250", End: "01:02:05.000 align:start position:10%", Lines: []string{"Clear!"}},
	})

	want := "1\n" +
		"00:00:01,000 --> 00:00:04,500\n" +
		"Get me a chest tube.\n" +
		"<i>Now!</i>\n" +
		"\n" +
		"2\n" +
		"01:02:03,250 --> 01:02:05,000\n" +
		"Clear!\n"

	if got := VTTToSRT(vtt); got != want {
		t.Errorf("VTTToSRT() =\n%q\nwant\n%q", got, want)
	}
}

func TestVTTToSRT_SkipsEmptyCuesAndNotes(t *testing.T) {
	vtt := "WEBVTT\r\n\r\n" +
		"NOTE translator comment\r\n\r\n" +
		"00:01.000 --> 00:02.000\r\n\r\n" +
		"00:03.000 --> 00:04.000\r\n" +
		"Still here.\r\n"

	want := "1\n00:00:03,000 --> 00:00:04,000\nStill here.\n"
	if got := VTTToSRT(vtt); got != want {
		t.Errorf("VTTToSRT() = %q, want %q", got, want)
	}
}

func TestVTTToSRT_HeaderOnly(t *testing.T) {
	if got := VTTToSRT(testutil.EmptyVTT); got != "" {
		t.Errorf("VTTToSRT() = %q, want empty", got)
	}
}

func TestIsWebVTT(t *testing.T) {
	tests := []struct {
		name string
		url  string
		body string
		want bool
	}{
		{"vtt extension", "https://cdn.example/subs/eng.vtt", "1\n00:00:01,000 --> 00:00:02,000\nHi\n", true},
		{"vtt extension with query", "https://cdn.example/subs/eng.VTT?token=abc", "", true},
		{"signature", "https://cdn.example/subs/eng", "\n WEBVTT\n\n", true},
		{"srt", "https://cdn.example/subs/eng.srt", "1\n00:00:01,000 --> 00:00:02,000\nHi\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWebVTT(tt.url, tt.body); got != tt.want {
				t.Errorf("IsWebVTT() = %v, want %v", got, tt.want)
			}
		})
	}
}
