package lyrics

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Sync is one timed fragment of a SYLT frame.
type Sync struct {
	Text   string
	Offset uint32 // milliseconds from the start of the track
}

const timeFormat = `\d+:\d{1,2}(?:\.\d+)?`

var (
	lineMarkRe     = regexp.MustCompile(`\[` + timeFormat + `\]`)
	syllableMarkRe = regexp.MustCompile(`<` + timeFormat + `>`)
	anyMarkRe      = regexp.MustCompile(`\[` + timeFormat + `\]|<` + timeFormat + `>`)
)

// FormatTimestamp renders milliseconds as MM:SS.mmm.
func FormatTimestamp(ms uint32) string {
	return fmt.Sprintf("%02d:%02d.%03d", ms/60000, ms%60000/1000, ms%1000)
}

// FormatSynced renders SYLT fragments as enhanced LRC text.
//
// The first offset opens a [MM:SS.mmm] line. Each fragment gets a
// <MM:SS.mmm> syllable mark; fragments spanning several lines continue on new
// lines whose [..] marks are interpolated by spreading the time up to the
// next fragment (or length, for the last one) evenly over the characters.
func FormatSynced(text []Sync, length time.Duration) string {
	if len(text) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("[" + FormatTimestamp(text[0].Offset) + "]")
	for i, s := range text {
		mark := "<" + FormatTimestamp(s.Offset) + ">"
		if !strings.Contains(s.Text, "\n") {
			b.WriteString(mark + s.Text)
			continue
		}

		end := float64(length.Milliseconds())
		if i+1 < len(text) {
			end = float64(text[i+1].Offset)
		}
		lines := strings.Split(s.Text, "\n")
		b.WriteString(mark + lines[0])

		var step float64
		if chars := utf8.RuneCountInString(strings.ReplaceAll(s.Text, "\n", "")); chars > 0 {
			step = max((end-float64(s.Offset))/float64(chars), 0)
		}
		at := float64(s.Offset) + step*float64(utf8.RuneCountInString(lines[0]))
		for _, line := range lines[1:] {
			b.WriteString("\n[" + FormatTimestamp(uint32(at)) + "]" + line)
			at += step * float64(utf8.RuneCountInString(line))
		}
	}
	return b.String()
}

// ParseSynced converts LRC text into SYLT fragments. When syllable marks are
// present, line marks are ignored. Text before the first mark is dropped and
// nil is returned if there are no marks at all.
func ParseSynced(s string) []Sync {
	if syllableMarkRe.MatchString(s) {
		s = lineMarkRe.ReplaceAllString(s, "")
	}

	marks := anyMarkRe.FindAllStringIndex(s, -1)
	if len(marks) == 0 {
		return nil
	}

	out := make([]Sync, 0, len(marks))
	for i, m := range marks {
		end := len(s)
		if i+1 < len(marks) {
			end = marks[i+1][0]
		}
		offset, err := parseOffset(s[m[0]+1 : m[1]-1])
		if err != nil {
			continue
		}
		out = append(out, Sync{Text: s[m[1]:end], Offset: offset})
	}

	// A boundary mark directly followed by another mark at the same time
	// leaves an empty fragment behind.
	kept := out[:0]
	for i, sy := range out {
		if sy.Text == "" && i+1 < len(out) && out[i+1].Offset == sy.Offset {
			continue
		}
		kept = append(kept, sy)
	}
	return kept
}

// parseOffset parses "M:SS.fff" into milliseconds. Offsets past the
// 32-bit SYLT range are rejected.
func parseOffset(ts string) (uint32, error) {
	minutes, seconds, ok := strings.Cut(ts, ":")
	if !ok {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	m, err := strconv.ParseUint(minutes, 10, 32)
	if err != nil {
		return 0, err
	}
	sec, err := strconv.ParseFloat(seconds, 64)
	if err != nil {
		return 0, err
	}
	ms := float64(m)*60000 + math.Round(sec*1000)
	if ms > math.MaxUint32 {
		return 0, fmt.Errorf("timestamp %q out of range", ts)
	}
	return uint32(ms), nil
}
