// Package subtitles builds timed cues from recognition results and encodes
// them as SubRip (SRT) documents.
package subtitles

import (
	"strings"

	"scribe/internal/transcript"
)

// WordsPerCue caps how many words a single cue carries.
const WordsPerCue = 7

// Cue is one timed subtitle entry. Index is assigned in emission order,
// starting at zero, and is never reused or reset within a document.
type Cue struct {
	Index   int
	Content string
	Start   float64
	End     float64
}

// CuesFromSequence partitions each completion's word list into runs of at
// most WordsPerCue consecutive words and emits one cue per run. A cue spans
// from its first word's start to its last word's end. Completions without
// word timing contribute nothing and do not advance the index.
func CuesFromSequence(seq transcript.Sequence) []Cue {
	var cues []Cue
	for _, res := range seq {
		words := res.Words
		for from := 0; from < len(words); from += WordsPerCue {
			line := words[from:min(from+WordsPerCue, len(words))]
			tokens := make([]string, len(line))
			for i, word := range line {
				tokens[i] = word.Word
			}
			cues = append(cues, Cue{
				Index:   len(cues),
				Content: strings.Join(tokens, " "),
				Start:   line[0].Start,
				End:     line[len(line)-1].End,
			})
		}
	}
	return cues
}
