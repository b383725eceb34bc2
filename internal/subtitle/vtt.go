package subtitle

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// cueTimingPattern keeps the "start --> end" part of a cue timing line and
// drops any trailing cue settings.
var cueTimingPattern = regexp.MustCompile(`([\d:,]+\s*-->\s*[\d:,]+).*`)

// IsWebVTT reports whether a subtitle is WebVTT, either by the extension of
// its URL path or by the WEBVTT signature at the start of the body.
func IsWebVTT(rawURL, body string) bool {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if strings.EqualFold(path.Ext(p), ".vtt") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(body), "WEBVTT")
}

// VTTToSRT converts a WebVTT document to SRT. The header block is dropped,
// optional cue identifiers are skipped, timestamps are rewritten to
// HH:MM:SS,mmm and cues are renumbered from 1. Cues without text are dropped.
func VTTToSRT(vtt string) string {
	lines := splitLines(strings.TrimSpace(vtt))
	i := 0

	// Header: everything up to the first blank line.
	for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
		i++
	}
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}

	var out []string
	cue := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == "" {
			i++
			continue
		}

		var timing string
		switch {
		case strings.Contains(lines[i], " --> "):
			timing = lines[i]
		case i+1 < len(lines) && strings.Contains(lines[i+1], " --> "):
			i++
			timing = lines[i]
		default:
			i++
			continue
		}

		i++

		var text []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			text = append(text, lines[i])
			i++
		}
		if len(text) == 0 {
			continue
		}

		cue++
		out = append(out, strconv.Itoa(cue), convertTiming(timing))
		out = append(out, text...)
		out = append(out, "")
	}

	return strings.Join(out, "\n")
}

func convertTiming(line string) string {
	line = strings.ReplaceAll(line, ".", ",")
	line = cueTimingPattern.ReplaceAllString(line, "$1")

	parts := strings.Split(line, " --> ")
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if strings.Count(part, ":") == 1 {
			part = "00:" + part
		}
		parts[i] = part
	}
	return strings.Join(parts, " --> ")
}
