package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Compose renders cues as a SubRip document: a sequential number starting at
// one, a timestamp line, the content line, and a blank separator after each
// cue. An empty cue slice renders as the empty string.
func Compose(cues []Cue) string {
	if len(cues) == 0 {
		return ""
	}
	var b strings.Builder
	for _, cue := range cues {
		b.WriteString(strconv.Itoa(cue.Index + 1))
		b.WriteByte('\n')
		b.WriteString(FormatTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(FormatTimestamp(cue.End))
		b.WriteByte('\n')
		b.WriteString(cue.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// FormatTimestamp renders seconds as the SRT HH:MM:SS,mmm form. Milliseconds
// round to nearest; negative inputs clamp to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	millis := int64(math.Round(seconds * 1000))
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// ParseTimestamp converts an SRT timestamp back to seconds. A period in
// place of the millisecond comma is tolerated.
func ParseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000, nil
}

// CountCues counts the cue blocks in a composed SRT document.
func CountCues(content string) int {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0
	}
	count := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			count++
		}
	}
	return count
}

// Validate checks a composed SRT document for structural issues. It returns
// a list of findings; an empty slice means the document passed. An empty
// document is reported, so callers should skip validation when a run
// legitimately produced no cues.
func Validate(content string) []string {
	var issues []string
	if CountCues(content) == 0 {
		return append(issues, "empty_subtitle_document")
	}

	wantIndex := 1
	for _, block := range strings.Split(strings.TrimSpace(content), "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.SplitN(block, "\n", 3)
		if len(lines) < 3 {
			issues = append(issues, fmt.Sprintf("cue %d: incomplete block", wantIndex))
			wantIndex++
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
		if err != nil {
			issues = append(issues, fmt.Sprintf("cue %d: bad index line %q", wantIndex, lines[0]))
		} else if index != wantIndex {
			issues = append(issues, fmt.Sprintf("cue %d: out of order index %d", wantIndex, index))
		}
		start, end, err := splitTimestampLine(lines[1])
		if err != nil {
			issues = append(issues, fmt.Sprintf("cue %d: %v", wantIndex, err))
		} else if end < start {
			issues = append(issues, fmt.Sprintf("cue %d: end precedes start", wantIndex))
		}
		if strings.TrimSpace(lines[2]) == "" {
			issues = append(issues, fmt.Sprintf("cue %d: empty content", wantIndex))
		}
		wantIndex++
	}
	return issues
}

func splitTimestampLine(line string) (float64, float64, error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad timestamp line %q", line)
	}
	start, err := ParseTimestamp(parts[0])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}
