// Package timecode converts between seconds and the textual time formats used
// by the queue, subtitle output, and artifact filenames.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Zero is the default start timestamp for new queue jobs.
const Zero = "00:00:00,000"

// FormatSubtitle renders seconds as HH:MM:SS,mmm (comma decimal separator).
// Hours, minutes, and seconds are floored; the millisecond remainder is kept.
func FormatSubtitle(seconds float64) string {
	return format(seconds, ',')
}

// FormatSRT renders seconds as HH:MM:SS.mmm. Subtitle file bodies use the dot
// separator while the queue display uses the comma form; the two consumers
// disagree by convention, so both formats exist.
func FormatSRT(seconds float64) string {
	return format(seconds, '.')
}

func format(seconds float64, sep byte) string {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := int(seconds) % 60
	ms := int(math.Round(math.Mod(seconds, 1) * 1000))
	if ms >= 1000 {
		ms -= 1000
		s++
		if s >= 60 {
			s = 0
			m++
			if m >= 60 {
				m = 0
				h++
			}
		}
	}
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, sep, ms)
}

// RangeToken builds the filename suffix that disambiguates artifacts produced
// from a carved sub-range: _HH-MM-SS_HH-MM-SS (no colons, filesystem safe).
func RangeToken(startSeconds, endSeconds float64) string {
	return "_" + dashPart(startSeconds) + "_" + dashPart(endSeconds)
}

func dashPart(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := int(seconds) % 60
	return fmt.Sprintf("%02d-%02d-%02d", h, m, s)
}

// Parse converts free-text H:M:S or H:M:S,mmm (or .mmm) back to seconds.
// It reports ok=false for anything malformed: not exactly three colon parts,
// negative components, or minutes/seconds >= 60. Callers treat a failed parse
// as "use the default", never as an error.
func Parse(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	var millis float64
	if idx := strings.IndexAny(text, ",."); idx >= 0 {
		frac := text[idx+1:]
		text = text[:idx]
		if frac == "" {
			return 0, false
		}
		ms, err := strconv.Atoi(frac)
		if err != nil || ms < 0 {
			return 0, false
		}
		millis = float64(ms) / math.Pow10(len(frac))
	}

	parts := strings.Split(text, ":")
	if len(parts) != 3 {
		return 0, false
	}
	values := make([]int, 3)
	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 {
			return 0, false
		}
		values[i] = v
	}
	if values[1] >= 60 || values[2] >= 60 {
		return 0, false
	}

	return float64(values[0])*3600 + float64(values[1])*60 + float64(values[2]) + millis, true
}
