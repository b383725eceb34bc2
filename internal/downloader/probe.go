package downloader

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Belphemur/HLSCapture/internal/models"
)

// formatRowPattern matches a row of "yt-dlp -F": "<id> <ext> <WxH> <detail>".
var formatRowPattern = regexp.MustCompile(`^(\S+)\s+(mp4|webm|mhtml|\w+)\s+(\d+x\d+|\w+)?\s*(.*)`)

// Prober lists the formats offered by a manifest without downloading it.
type Prober struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// NewProber creates a prober. A non-positive timeout means no limit.
func NewProber(binary string, timeout time.Duration, exec Executor) *Prober {
	if exec == nil {
		exec = commandExecutor{}
	}
	return &Prober{binary: binary, timeout: timeout, exec: exec}
}

// ProbeFormats runs the format listing and returns the video formats found.
func (p *Prober) ProbeFormats(ctx context.Context, url string) ([]models.Format, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var formats []models.Format
	err := p.exec.Run(ctx, p.binary, []string{"-F", "--no-download", url}, func(line string) {
		if f, ok := parseFormatRow(line); ok {
			formats = append(formats, f)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("probe formats: %w", err)
	}
	return formats, nil
}

func parseFormatRow(line string) (models.Format, bool) {
	m := formatRowPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil || !strings.Contains(m[3], "x") {
		return models.Format{}, false
	}
	return models.Format{
		FormatID:   m[1],
		Ext:        m[2],
		Resolution: m[3],
		Detail:     strings.TrimSpace(m[4]),
	}, true
}

// BestFormat returns the format the download would select: the largest
// resolution whose height does not exceed maxHeight.
func BestFormat(formats []models.Format, maxHeight int) (models.Format, bool) {
	var best *models.Format
	bestPixels := 0
	for i := range formats {
		w, h, ok := formats[i].Dimensions()
		if !ok {
			continue
		}
		if pixels := w * h; pixels > bestPixels && h <= maxHeight {
			bestPixels = pixels
			best = &formats[i]
		}
	}
	if best == nil {
		return models.Format{}, false
	}
	return *best, true
}

// BestFormatLabel describes BestFormat as "WxH ext". Without a candidate it
// falls back to the last format's resolution, and to "unknown" when there are
// no formats.
func BestFormatLabel(formats []models.Format, maxHeight int) string {
	if len(formats) == 0 {
		return "unknown"
	}
	if best, ok := BestFormat(formats, maxHeight); ok {
		return best.Resolution + " " + best.Ext
	}
	return formats[len(formats)-1].Resolution
}
