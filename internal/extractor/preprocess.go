package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputBytes bounds how much of one email is scanned.
const DefaultMaxInputBytes = 64 << 10

var (
	blankLinesRE = regexp.MustCompile(`\n{3,}`)
	hSpaceRE     = regexp.MustCompile(`[ \t\f\v]{2,}`)
	lineEndings  = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Preprocess normalizes line endings and whitespace. It is a fixed point:
// Preprocess(Preprocess(s)) == Preprocess(s).
func Preprocess(text string) string {
	text = lineEndings.Replace(text)
	text = blankLinesRE.ReplaceAllString(text, "\n\n")
	text = hSpaceRE.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
