package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Rich keeps the safe subset of user supplied HTML (links, emphasis, lists).
func Rich(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}

// Text strips every tag and returns plain text.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
