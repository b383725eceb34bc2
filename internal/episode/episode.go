// Package episode turns streaming page URLs into canonical episode identities
// and computes where an episode's files live on disk.
package episode

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// slugPattern matches "tv-<slug>" with an optional trailing site id, e.g. "tv-the-pitt-4vevg".
	slugPattern = regexp.MustCompile(`(?i)tv-(.+?)(?:-[a-z0-9]{4,6})?$`)
	// episodePattern matches the "#ep=<season>,<episode>" fragment.
	episodePattern = regexp.MustCompile(`ep=(\d+),(\d+)`)
)

// Key identifies one episode of one show independently of the manifest variant
// or subtitle track that was captured for it.
type Key struct {
	Slug    string
	Season  int
	Episode int
}

// String renders the key as "slug|season|episode".
func (k Key) String() string {
	return fmt.Sprintf("%s|%d|%d", k.Slug, k.Season, k.Episode)
}

// PageInfo is what could be recovered from a page URL. Season and Episode are
// nil when the fragment did not carry them.
type PageInfo struct {
	Slug     string
	ShowName string
	Season   *int
	Episode  *int
}

// Key returns the episode key when slug, season and episode are all known.
func (p PageInfo) Key() (Key, bool) {
	if p.Slug == "" || p.Season == nil || p.Episode == nil {
		return Key{}, false
	}
	return Key{Slug: p.Slug, Season: *p.Season, Episode: *p.Episode}, true
}

// Complete reports whether the page identifies a show name, season and episode.
func (p PageInfo) Complete() bool {
	_, ok := p.Key()
	return ok && p.ShowName != ""
}

// ParsePageURL extracts the show slug, a human show-name guess and the
// season/episode numbers from a page URL such as
// "https://site.example/tv-the-pitt-4vevg#ep=1,5". It never fails; fields it
// cannot recover are left empty.
func ParsePageURL(raw string) PageInfo {
	var info PageInfo

	path, fragment := splitPageURL(raw)
	path = strings.Trim(path, "/")
	if m := slugPattern.FindStringSubmatch(path); m != nil {
		info.Slug = m[1]
		info.ShowName = GuessShowName(m[1])
	}

	if m := episodePattern.FindStringSubmatch(fragment); m != nil {
		season, serr := strconv.Atoi(m[1])
		ep, eerr := strconv.Atoi(m[2])
		if serr == nil && eerr == nil {
			info.Season = &season
			info.Episode = &ep
		}
	}

	return info
}

// splitPageURL returns the path and fragment of raw. Malformed escapes make
// url.Parse fail, in which case the raw string is split by hand.
func splitPageURL(raw string) (path, fragment string) {
	if u, err := url.Parse(raw); err == nil {
		return u.Path, u.Fragment
	}
	rest, fragment, _ := strings.Cut(raw, "#")
	rest, _, _ = strings.Cut(rest, "?")
	if _, afterScheme, ok := strings.Cut(rest, "://"); ok {
		if i := strings.Index(afterScheme, "/"); i >= 0 {
			rest = afterScheme[i:]
		} else {
			rest = ""
		}
	}
	return rest, fragment
}

// GuessShowName converts a slug such as "the-pitt" into "The Pitt".
// A Caser keeps state between calls, so each call builds its own.
func GuessShowName(slug string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}

// Resolved is the canonical identity of an accepted episode. It is written
// once per key and never changes afterwards.
type Resolved struct {
	ShowTitle string
	Season    int
	Episode   int
}

// Tag returns the episode tag, e.g. "S01E05".
func (r Resolved) Tag() string {
	return Tag(r.Season, r.Episode)
}

// Tag formats season and episode as "SNNEMM".
func Tag(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}
