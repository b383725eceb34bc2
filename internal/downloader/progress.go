package downloader

import (
	"regexp"
	"strconv"

	"github.com/Belphemur/HLSCapture/internal/models"
)

var (
	// [download]  42.3% of ~ 500.00MiB at  5.23MiB/s ETA 01:23 (frag 381/900)
	progressPattern = regexp.MustCompile(`\[download\]\s+([\d.]+)%\s+of\s+~?\s*(\S+)\s+at\s+(\S+)\s+ETA\s+(\S+)\s+\(frag\s+(\d+)/(\d+)\)`)
	// [info] abc: Downloading 1 format(s): 4500
	qualityPattern = regexp.MustCompile(`Downloading \d+ format\(s\):\s*(\S+)`)
	// [hlsnative] Total fragments: 900
	fragmentsPattern = regexp.MustCompile(`Total fragments:\s*(\d+)`)
	donePattern      = regexp.MustCompile(`\[download\]\s+100%`)
)

// ProgressEvent is what one line of download tool output says about the
// download. A single line can carry several facts at once.
type ProgressEvent struct {
	Quality    string // selected format, empty when not announced
	TotalFrags int    // 0 when unknown

	HasProgress bool
	Percent     float64
	Size        string
	Speed       string
	ETA         string
	Frag        int

	Done bool
}

// Apply copies the facts carried by e onto s.
func (e ProgressEvent) Apply(s *models.DownloadState) {
	if e.Quality != "" {
		s.Quality = e.Quality
	}
	if e.TotalFrags > 0 {
		s.TotalFrags = e.TotalFrags
	}
	if e.HasProgress {
		s.Percent = e.Percent
		s.Size = e.Size
		s.Speed = e.Speed
		s.ETA = e.ETA
		s.Frag = e.Frag
	}
	if e.Done {
		s.Percent = 100
	}
}

// ProgressDecoder recognises the yt-dlp output lines that matter for progress
// reporting. It holds no state and is safe for concurrent use.
type ProgressDecoder struct{}

// Next decodes line. ok is false for lines that carry nothing of interest.
func (ProgressDecoder) Next(line string) (ProgressEvent, bool) {
	var e ProgressEvent
	ok := false

	if m := progressPattern.FindStringSubmatch(line); m != nil {
		pct, perr := strconv.ParseFloat(m[1], 64)
		frag, ferr := strconv.Atoi(m[5])
		total, terr := strconv.Atoi(m[6])
		if perr == nil && ferr == nil && terr == nil {
			e.HasProgress = true
			e.Percent = pct
			e.Size = m[2]
			e.Speed = m[3]
			e.ETA = m[4]
			e.Frag = frag
			e.TotalFrags = total
			ok = true
		}
	}
	if donePattern.MatchString(line) {
		e.Done = true
		ok = true
	}
	if m := qualityPattern.FindStringSubmatch(line); m != nil {
		e.Quality = m[1]
		ok = true
	}
	if m := fragmentsPattern.FindStringSubmatch(line); m != nil {
		if total, err := strconv.Atoi(m[1]); err == nil {
			e.TotalFrags = total
			ok = true
		}
	}
	return e, ok
}
