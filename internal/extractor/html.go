package extractor

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlDropRE  = regexp.MustCompile(`(?is)<(?:script|style|head)\b.*?</(?:script|style|head)>`)
	htmlBreakRE = regexp.MustCompile(`(?i)<(?:br|/p|/div|/li|/tr|/h[1-6])\b[^>]*>`)
	htmlHrefRE  = regexp.MustCompile(`(?i)<a\b[^>]*?href\s*=\s*["']([^"']+)["'][^>]*>`)
	htmlTagRE   = regexp.MustCompile(`<[^>]*>`)
)

// HTMLToText flattens an HTML mail body into plain text. Anchors keep their
// href so links survive the conversion.
func HTMLToText(s string) string {
	s = htmlDropRE.ReplaceAllString(s, "")
	s = htmlBreakRE.ReplaceAllString(s, "\n")
	s = htmlHrefRE.ReplaceAllString(s, " $1 ")
	s = htmlTagRE.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.ReplaceAll(s, "\u00a0", " ")
}
