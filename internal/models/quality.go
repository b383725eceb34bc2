package models

import (
	"strconv"
	"strings"
)

// Quality represents the vertical resolution tier of a video format
type Quality int

const (
	QualityUnknown Quality = iota
	Quality360p
	Quality480p
	Quality720p
	Quality1080p
	Quality1440p
	Quality2160p // 4K
)

var qualityHeights = map[Quality]int{
	Quality360p:  360,
	Quality480p:  480,
	Quality720p:  720,
	Quality1080p: 1080,
	Quality1440p: 1440,
	Quality2160p: 2160,
}

// String returns the string representation of the quality
func (q Quality) String() string {
	if h, ok := qualityHeights[q]; ok {
		return strconv.Itoa(h) + "p"
	}
	return "unknown"
}

// Height returns the nominal height of the tier, 0 when unknown.
func (q Quality) Height() int {
	return qualityHeights[q]
}

// QualityFromHeight maps a pixel height to the highest tier it reaches.
// Heights below 360 are unknown.
func QualityFromHeight(height int) Quality {
	best := QualityUnknown
	for q, h := range qualityHeights {
		if height >= h && h > best.Height() {
			best = q
		}
	}
	return best
}

// ParseQuality converts a quality string such as "1080p" or "720" to a Quality.
func ParseQuality(qualityStr string) Quality {
	s := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(qualityStr)), "p")
	h, err := strconv.Atoi(s)
	if err != nil {
		return QualityUnknown
	}
	for q, qh := range qualityHeights {
		if qh == h {
			return q
		}
	}
	return QualityUnknown
}

// MarshalJSON implements json.Marshaler interface
func (q Quality) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.String() + `"`), nil
}
