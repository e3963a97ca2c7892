package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"video-subtitler/internal/app/model"
)

// Parse decodes SRT bytes into a transcript. Parsing is lenient: blocks that
// lack a timing line, have an unparsable timestamp, or carry no text are
// skipped rather than failing the whole document. An empty input yields an
// empty transcript.
func Parse(data []byte) model.Transcript {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Transcript{}
	}

	transcript := model.Transcript{}
	for _, block := range strings.Split(content, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}

		// lines[0] is the index, regenerated on serialize and ignored here.
		timing := lines[1]
		if !strings.Contains(timing, "-->") {
			continue
		}
		parts := strings.SplitN(timing, "-->", 2)
		start, err := parseTimestamp(parts[0])
		if err != nil {
			continue
		}
		end, err := parseTimestamp(parts[1])
		if err != nil {
			continue
		}
		if end <= start {
			continue
		}

		transcript = append(transcript, model.Segment{
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return transcript
}

// Serialize encodes a transcript as SRT bytes. Indices are renumbered 1..N,
// timestamps are truncated to the millisecond, and blocks are separated by
// exactly one blank line. An empty transcript serializes to an empty
// document.
func Serialize(t model.Transcript) []byte {
	var b strings.Builder
	for i, seg := range t {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(formatTimestamp(seg.Start))
		b.WriteString(" --> ")
		b.WriteString(formatTimestamp(seg.End))
		b.WriteString("\n")
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return []byte(b.String())
}

// parseTimestamp converts "HH:MM:SS,mmm" to seconds. H/M/S are exact integer
// arithmetic; only the millisecond term is a float division.
func parseTimestamp(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	// Some encoders emit a period before the milliseconds; the SRT standard
	// uses a comma.
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

// formatTimestamp renders seconds as zero-padded "HH:MM:SS,mmm",
// truncating sub-millisecond precision.
func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	totalMillis := int64(math.Round(seconds * 1000))
	h := totalMillis / 3_600_000
	m := totalMillis % 3_600_000 / 60_000
	s := totalMillis % 60_000 / 1000
	ms := totalMillis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
