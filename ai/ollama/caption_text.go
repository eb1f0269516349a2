package ollama

import "strings"

// captionPreambles are prefixes of conversational boilerplate lines that
// vision models tend to emit before the actual description.
var captionPreambles = []string{
	"here",
	"this image",
	"sure",
	"certainly",
}

// cleanCaption strips leading boilerplate from raw model output. Blank lines
// and lines starting with a conversational preamble are dropped from the
// front only, until the first substantive line; the surviving non-blank lines
// are rejoined with single spaces. If everything is stripped, the raw text is
// returned unmodified rather than an empty string.
func cleanCaption(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))
	started := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !started && (line == "" || isPreamble(line)) {
			continue
		}
		started = true
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	result := strings.Join(cleaned, " ")
	if result == "" {
		return raw
	}
	return result
}

// isPreamble reports whether a line starts with a known conversational preamble.
func isPreamble(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range captionPreambles {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
