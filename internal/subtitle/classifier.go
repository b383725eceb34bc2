// Package subtitle decides whether a subtitle track is usable English
// dialogue and converts WebVTT tracks to SRT.
package subtitle

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Thresholds tunes the classifier heuristics.
type Thresholds struct {
	SampleLines       int     // dialogue lines inspected
	MaxMojibake       int     // UTF-8-read-as-Latin-1 pairs tolerated
	MaxLatin1Symbols  int     // U+0080-U+00BF runes tolerated
	MaxAccentedRatio  float64 // accented letters / letters
	MaxForeignMarkers int     // function-word hits tolerated
	MinASCIIRatio     float64 // ASCII letters / letters required (exclusive)
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SampleLines:       50,
		MaxMojibake:       2,
		MaxLatin1Symbols:  2,
		MaxAccentedRatio:  0.05,
		MaxForeignMarkers: 8,
		MinASCIIRatio:     0.9,
	}
}

// Rejection reasons reported in Verdict.Reason.
const (
	ReasonNoDialogue     = "no dialogue"
	ReasonSprite         = "thumbnail sprite"
	ReasonMojibake       = "mojibake"
	ReasonLatin1Symbols  = "latin-1 symbols"
	ReasonAccented       = "accented letters"
	ReasonForeignMarkers = "foreign function words"
	ReasonLowASCII       = "low ascii ratio"
	ReasonEnglish        = "english"
)

// Verdict is the classifier outcome.
type Verdict struct {
	Accepted bool
	Reason   string
}

// Classifier applies layered heuristics to subtitle text.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier creates a classifier. A zero SampleLines, MaxAccentedRatio or
// MinASCIIRatio falls back to the default. The count limits are used as given,
// so zero allows no occurrence at all.
func NewClassifier(t Thresholds) *Classifier {
	def := DefaultThresholds()
	if t.SampleLines <= 0 {
		t.SampleLines = def.SampleLines
	}
	if t.MaxAccentedRatio <= 0 {
		t.MaxAccentedRatio = def.MaxAccentedRatio
	}
	if t.MinASCIIRatio <= 0 {
		t.MinASCIIRatio = def.MinASCIIRatio
	}
	return &Classifier{thresholds: t}
}

var (
	mojibakePattern = regexp.MustCompile(`Ã[\x{80}-\x{BF}]`)
	cueIndexPattern = regexp.MustCompile(`^\d+$`)
)

type marker struct {
	word      string
	wholeWord bool
}

// foreignMarkers are common French, Spanish, German and Portuguese function
// words. Entries without wholeWord only need a boundary before them.
var foreignMarkers = []marker{
	// French
	{"je", true}, {"qu'", false}, {"que", false}, {"c'est", true}, {"un", true}, {"une", true},
	{"pour", true}, {"pas", true}, {"vous", true}, {"les", true}, {"des", true}, {"dans", true},
	// Spanish
	{"el", true}, {"los", true}, {"por", true}, {"que", true}, {"una", true}, {"está", true}, {"como", true},
	// German
	{"ich", true}, {"ein", true}, {"das", true}, {"ist", true}, {"nicht", true}, {"aber", true},
	// Portuguese
	{"não", true}, {"com", true}, {"uma", true}, {"para", true}, {"você", true},
}

// Classify runs the heuristics in order and returns the first rejection, or
// an acceptance when the ASCII letter ratio is high enough.
func (c *Classifier) Classify(text string) Verdict {
	t := c.thresholds

	dialogue := extractDialogue(text, t.SampleLines)
	if len(dialogue) == 0 {
		return Verdict{Reason: ReasonNoDialogue}
	}
	sample := strings.Join(dialogue, " ")

	if IsThumbnailSprite(sample) {
		return Verdict{Reason: ReasonSprite}
	}

	if len(mojibakePattern.FindAllStringIndex(sample, -1)) > t.MaxMojibake {
		return Verdict{Reason: ReasonMojibake}
	}

	var latin1, accented, letters, asciiLetters int
	for _, r := range sample {
		if r >= 0x80 && r <= 0xBF {
			latin1++
		}
		if isAccented(r) {
			accented++
		}
		if unicode.IsLetter(r) {
			letters++
			if r <= unicode.MaxASCII {
				asciiLetters++
			}
		}
	}

	if latin1 > t.MaxLatin1Symbols {
		return Verdict{Reason: ReasonLatin1Symbols}
	}
	if letters > 0 && float64(accented)/float64(letters) > t.MaxAccentedRatio {
		return Verdict{Reason: ReasonAccented}
	}
	if countForeignMarkers(sample) > t.MaxForeignMarkers {
		return Verdict{Reason: ReasonForeignMarkers}
	}
	if letters == 0 || float64(asciiLetters)/float64(letters) <= t.MinASCIIRatio {
		return Verdict{Reason: ReasonLowASCII}
	}

	return Verdict{Accepted: true, Reason: ReasonEnglish}
}

// IsThumbnailSprite reports whether text looks like a thumbnail sprite map
// rather than dialogue.
func IsThumbnailSprite(text string) bool {
	return strings.Contains(text, "xywh=") || strings.Contains(strings.ToLower(text), "thumbnails")
}

func extractDialogue(text string, limit int) []string {
	var lines []string
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "WEBVTT"), strings.HasPrefix(line, "NOTE"):
		case cueIndexPattern.MatchString(line):
		case strings.Contains(line, "-->"):
		default:
			lines = append(lines, line)
			if len(lines) == limit {
				return lines
			}
		}
	}
	return lines
}

func isAccented(r rune) bool {
	switch {
	case r >= 0x00C0 && r <= 0x00D6,
		r >= 0x00D8 && r <= 0x00F6,
		r >= 0x00F8 && r <= 0x024F:
		return true
	}
	return false
}

func countForeignMarkers(sample string) int {
	lower := strings.ReplaceAll(strings.ToLower(sample), "’", "'")
	hits := 0
	for _, m := range foreignMarkers {
		hits += countWord(lower, m.word, m.wholeWord)
	}
	return hits
}

// countWord counts non-overlapping occurrences of word that start on a word
// boundary and, when wholeWord is set, also end on one.
func countWord(s, word string, wholeWord bool) int {
	n := 0
	for i := 0; i < len(s); {
		j := strings.Index(s[i:], word)
		if j < 0 {
			break
		}
		start, end := i+j, i+j+len(word)
		if boundaryBefore(s, start) && (!wholeWord || boundaryAfter(s, end)) {
			n++
			i = end
			continue
		}
		i = start + 1
	}
	return n
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
