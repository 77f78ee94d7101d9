// Package language normalizes user-supplied language hints into the
// two-letter codes the transcription backend expects.
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Auto asks the backend to detect the spoken language itself.
const Auto = "auto"

// Normalize maps a hint (ISO code, BCP 47 tag, or the auto sentinel)
// onto the base two-letter code, lowercased. It returns ok=false for
// hints that do not name a known language; callers fall back to
// detection.
func Normalize(hint string) (string, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(hint))
	if trimmed == "" || trimmed == Auto {
		return Auto, true
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return "", false
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return "", false
	}
	return base.String(), true
}

// Hint converts a normalized value into what the engine receives: the
// code itself, or empty for auto-detection.
func Hint(normalized string) string {
	if normalized == "" || normalized == Auto {
		return ""
	}
	return normalized
}

// DisplayName renders a code for status output, falling back to the
// uppercased input when the code is unknown.
func DisplayName(code string) string {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" || trimmed == Auto {
		return "Auto-detect"
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return strings.ToUpper(trimmed)
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return strings.ToUpper(trimmed)
}
