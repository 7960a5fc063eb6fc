package youtube

import (
	"regexp"
	"strings"
)

// videoIDPattern matches the 11-character video ID in every URL shape the
// dashboard accepts: watch URLs (with or without extra query parameters),
// youtu.be short links, /embed/, /v/ and /e/ paths, and a bare ID. The ID
// alphabet is base64url and the run must stop at exactly 11 characters.
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:[^#\s]*&)?v=|embed/|v/|e/)|youtu\.be/|^)([A-Za-z0-9_-]{11})(?:[^A-Za-z0-9_-]|$)`)

// ExtractVideoID pulls the canonical video ID out of a URL or bare ID. The
// second return is false when the input contains no recognizable ID; that is
// an expected validation outcome, not an error.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	m := videoIDPattern.FindStringSubmatch(input)
	if m == nil {
		return "", false
	}
	return m[1], true
}
