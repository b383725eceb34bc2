package testutil

import (
	"fmt"
	"strings"
)

// IntPtr is a helper for creating *int values in tests
func IntPtr(v int) *int {
	return &v
}

// CueOptions describes one cue of a generated subtitle document.
type CueOptions struct {
	ID    string // Optional cue identifier line
	Start string // e.g. "00:01.000"
	End   string
	Lines []string
}

// GenerateVTT builds a WebVTT document from cues. Header lines are emitted
// after the WEBVTT signature and before the first blank line.
func GenerateVTT(header []string, cues []CueOptions) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n")
	for _, h := range header {
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for _, cue := range cues {
		if cue.ID != "" {
			sb.WriteString(cue.ID)
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s --> %s\n", cue.Start, cue.End)
		for _, line := range cue.Lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// GenerateSRT builds an SRT document, numbering cues from 1.
func GenerateSRT(cues []CueOptions) string {
	var sb strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&sb, "%d\n%s --> %s\n", i+1, cue.Start, cue.End)
		for _, line := range cue.Lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// DialogueVTT wraps each line in its own two-second cue.
func DialogueVTT(lines ...string) string {
	cues := make([]CueOptions, 0, len(lines))
	for i, line := range lines {
		cues = append(cues, CueOptions{
			Start: fmt.Sprintf("00:%02d.000", i*2),
			End:   fmt.Sprintf("00:%02d.500", i*2+1),
			Lines: []string{line},
		})
	}
	return GenerateVTT(nil, cues)
}

// EnglishVTT is an ordinary English dialogue track.
var EnglishVTT = DialogueVTT(
	"Where is the charge nurse?",
	"We need two units of O negative, now.",
	"He's crashing. Get the cart over here.",
	"I told you this shift was going to be long.",
	"Nobody leaves until the board is clear.",
	"♪ Soft music playing ♪",
)

// FrenchVTT is a French dialogue track written without accents, so only the
// function-word markers can reject it.
var FrenchVTT = DialogueVTT(
	"Je ne sais pas ce que vous voulez dire.",
	"Les patients sont dans la salle, pour une heure.",
	"C'est pas possible, je vous dis que non.",
	"Il y a des gens qui attendent dans le couloir.",
	"Un medecin pour les urgences, vite.",
)

// AccentedVTT is a French track with regular accented letters.
var AccentedVTT = DialogueVTT(
	"Ça va très bien, merci beaucoup.",
	"L'hôpital est fermé à cette heure-là.",
	"Où est passé le médecin de garde?",
)

// MojibakeSRT is French text that was UTF-8 encoded and decoded as Latin-1.
var MojibakeSRT = GenerateSRT([]CueOptions{
	{Start: "00:00:01,000", End: "00:00:02,000", Lines: []string{"Ã©tÃ© trÃ¨s chaud, dÃ©jÃ  vu"}},
	{Start: "00:00:03,000", End: "00:00:04,000", Lines: []string{"Tout est terminÃ© maintenant"}},
})

// Latin1SymbolsSRT is CP1250 text decoded as Latin-1.
var Latin1SymbolsSRT = GenerateSRT([]CueOptions{
	{Start: "00:00:01,000", End: "00:00:02,000", Lines: []string{"Dzi¹kujê, to by³o mi³e"}},
	{Start: "00:00:03,000", End: "00:00:04,000", Lines: []string{"Co siê sta³o z ¿on¹?"}},
})

// SpriteVTT is a thumbnail sprite map served as a subtitle track.
var SpriteVTT = GenerateVTT(nil, []CueOptions{
	{Start: "00:00.000", End: "00:05.000", Lines: []string{"thumbs/sprite-0.jpg#xywh=0,0,160,90"}},
	{Start: "00:05.000", End: "00:10.000", Lines: []string{"thumbs/sprite-0.jpg#xywh=160,0,160,90"}},
})

// EmptyVTT has the signature but no cues.
var EmptyVTT = "WEBVTT\n\nNOTE nothing to see here\n\n"
