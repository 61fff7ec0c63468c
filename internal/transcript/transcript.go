// Package transcript models the completions a streaming recognizer emits for
// one input file and renders the accumulated sequence as plain text.
package transcript

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Word is one recognized token with second-based timing.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Conf  float64 `json:"conf"`
}

// Result is a single completion: the whole recognized phrase plus optional
// word-level timing. Silence yields an empty Text and no Words.
type Result struct {
	Text  string `json:"text"`
	Words []Word `json:"result"`
}

// HasWords reports whether the completion carries usable word timing. A
// present-but-empty word list counts the same as an absent one.
func (r Result) HasWords() bool {
	return len(r.Words) > 0
}

// Sequence is the ordered accumulation of completions for one input file.
// The forced end-of-stream flush is always the final element.
type Sequence []Result

// ParseResult decodes one recognizer payload. Payloads that are not valid
// JSON for the expected shape are an error; a payload without word timing is
// not.
func ParseResult(payload []byte) (Result, error) {
	var res Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return Result{}, fmt.Errorf("decode recognizer result: %w", err)
	}
	return res, nil
}

// Text renders the sequence as a flat transcript: every completion with a
// non-empty phrase contributes the phrase followed by a single space, in
// sequence order. Completions without text contribute nothing.
func (s Sequence) Text() string {
	var b strings.Builder
	for _, res := range s {
		if res.Text == "" {
			continue
		}
		b.WriteString(res.Text)
		b.WriteByte(' ')
	}
	return b.String()
}

// WordCount returns the total number of timed words across the sequence.
func (s Sequence) WordCount() int {
	total := 0
	for _, res := range s {
		total += len(res.Words)
	}
	return total
}
