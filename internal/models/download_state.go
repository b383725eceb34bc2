package models

// DownloadStatus is the lifecycle state of an episode download
type DownloadStatus string

const (
	StatusQueued      DownloadStatus = "queued"
	StatusDownloading DownloadStatus = "downloading"
	StatusMoving      DownloadStatus = "moving"
	StatusDone        DownloadStatus = "done"
	StatusError       DownloadStatus = "error"
	StatusDryRun      DownloadStatus = "dry_run"
)

// Terminal reports whether no further transitions follow s.
func (s DownloadStatus) Terminal() bool {
	return s == StatusDone || s == StatusError || s == StatusDryRun
}

// DownloadState is the progress record of one episode download as exposed by
// the downloads listing
type DownloadState struct {
	EpisodeKey string         `json:"ep_key"`
	Filename   string         `json:"filename"`
	Show       string         `json:"show"`
	EpisodeTag string         `json:"ep_tag"`
	Status     DownloadStatus `json:"status"`
	Percent    float64        `json:"percent"`
	Speed      string         `json:"speed"`
	ETA        string         `json:"eta"`
	Size       string         `json:"size"`
	Frag       int            `json:"frag"`
	TotalFrags int            `json:"total_frags"`
	Quality    string         `json:"quality"`
	Started    float64        `json:"started"` // Unix seconds
}
