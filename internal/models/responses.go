package models

// CaptureResult is the outcome of a capture request. Status is one of
// "downloading", "skipped" or "error".
type CaptureResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// SubtitleResult is the acknowledgement of a subtitle submission. Status is
// "ok" when the subtitle was accepted for processing, or "skipped".
type SubtitleResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// PreviewResult describes what a capture would produce without starting it
type PreviewResult struct {
	Status     string   `json:"status"`
	Message    string   `json:"message,omitempty"`
	ShowTitle  string   `json:"show_title,omitempty"`
	Season     int      `json:"season,omitempty"`
	Episode    int      `json:"episode,omitempty"`
	EpisodeTag string   `json:"ep_tag,omitempty"`
	Filename   string   `json:"filename,omitempty"`
	Quality    string   `json:"quality,omitempty"`
	Tier       Quality  `json:"tier,omitempty"`
	Formats    []Format `json:"formats,omitempty"`
}

// Response status values shared by the result types.
const (
	ResponseOK          = "ok"
	ResponseDownloading = "downloading"
	ResponseSkipped     = "skipped"
	ResponseError       = "error"
)
