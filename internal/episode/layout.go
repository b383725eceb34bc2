package episode

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// SanitizeName makes a name safe to use as a Windows path component: reserved
// characters become spaces, whitespace runs collapse and trailing spaces and
// dots are removed.
func SanitizeName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return ' '
		}
		return r
	}, name)
	name = strings.TrimSpace(whitespacePattern.ReplaceAllString(name, " "))
	return strings.TrimRight(name, " .")
}

// ShowTitle builds the folder title for a show. With a known year the title
// becomes "Title (Year)"; otherwise the bare title is used.
func ShowTitle(title, year string) string {
	if year == "" {
		return SanitizeName(title)
	}
	return SanitizeName(fmt.Sprintf("%s (%s)", title, year))
}

// Layout computes output paths under a library root:
// <root>/<Show>/Season NN/<Show> SNNEMM.mp4
type Layout struct {
	Root string
}

// Filename returns the video file name for r.
func (l Layout) Filename(r Resolved) string {
	return fmt.Sprintf("%s %s.mp4", r.ShowTitle, r.Tag())
}

// SeasonDir returns the directory holding the season's files.
func (l Layout) SeasonDir(r Resolved) string {
	return filepath.Join(l.Root, r.ShowTitle, fmt.Sprintf("Season %02d", r.Season))
}

// VideoPath returns the full path of the episode's video file.
func (l Layout) VideoPath(r Resolved) string {
	return filepath.Join(l.SeasonDir(r), l.Filename(r))
}

// SubtitlePath returns the full path of the episode's .srt file.
func (l Layout) SubtitlePath(r Resolved) string {
	return filepath.Join(l.SeasonDir(r), fmt.Sprintf("%s %s.srt", r.ShowTitle, r.Tag()))
}
