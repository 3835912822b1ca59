package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// SanitizeContent strips every markup tag from user content and trims the
// result. Comments are stored and served as plain text; a markup-only
// submission sanitizes to "" and must be rejected by the caller.
func SanitizeContent(content string) string {
	stripped := stripPolicy.Sanitize(content)
	// bluemonday escapes entities in the surviving text; undo that so the
	// stored content is the literal characters the author typed.
	return strings.TrimSpace(html.UnescapeString(stripped))
}
