package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	positionTitle = `([A-Za-z][A-Za-z0-9 \t\-_/&.,]{2,49}?)`
	positionEnd   = `(?:\s+(?i:at|with|in|for)\b|\s*[(\n]|[.,;!](?:\s|$)|$)`
	positionArt   = `(?:(?i:a|an|the)[ \t]+)?`
)

var positionRules = []Rule{
	{Name: "label", BaseScore: 95,
		Pattern: `\b(?i:position|role|job[ \t]+title|designation|post|profile)[ \t]*[:\-–][ \t]*` + positionArt + positionTitle + positionEnd},
	{Name: "hiring_for", BaseScore: 90,
		Pattern: `\b(?i:hiring|recruiting|looking)[ \t]+(?i:for)[ \t]+` + positionArt + positionTitle + positionEnd},
	{Name: "we_are_hiring", BaseScore: 85,
		Pattern: `\b(?i:we[ \t]+are|we're)[ \t]+(?i:hiring|recruiting)[ \t]*:?[ \t]+` + positionArt + positionTitle + positionEnd},
	{Name: "join_as", BaseScore: 80,
		Pattern: `\b(?i:join)[^\n]{0,40}?[ \t](?i:as)[ \t]+` + positionArt + positionTitle + positionEnd},
	{Name: "vacancy", BaseScore: 75,
		Pattern: `\b(?i:vacancy|vacancies|openings?)[ \t]+(?i:for)[ \t]+` + positionArt + positionTitle + positionEnd},
}

var positionMatchers = compileRules(FieldPosition, positionRules)

var (
	positionArticleRE = regexp.MustCompile(`(?i)^(?:the|a|an)\s+`)
	positionJunkRE    = regexp.MustCompile(`[^\w\s\-_/&.,()+#]`)
	titleKeywordRE    = regexp.MustCompile(`(?i)\b(?:engineer|developer|analyst|manager|intern|trainee|consultant|designer|architect|scientist|associate|administrator|specialist|executive|lead|tester|programmer|officer|sde)s?\b`)
	seniorityRE       = regexp.MustCompile(`(?i)junior|senior|level|grade|\bsde\b|\bl\d\b`)
	digitRE           = regexp.MustCompile(`\d`)
)

var genericTitles = wordSet(`job jobs career careers position role work apply application opening vacancy post unknown n/a`)

var positionAdjustments = []adjustment[string]{
	{name: "title_keyword", delta: 20, when: titleKeywordRE.MatchString},
	{name: "wordy", delta: -10, when: func(s string) bool { return len(strings.Fields(s)) > 5 }},
	{name: "unexplained_digits", delta: -15, when: func(s string) bool {
		return digitRE.MatchString(s) && !seniorityRE.MatchString(s)
	}},
}

func newPositionSpec() *fieldSpec[string] {
	return &fieldSpec[string]{
		field:       FieldPosition,
		rules:       positionMatchers,
		floor:       50,
		normalize:   normalizePosition,
		adjustments: positionAdjustments,
		validate:    validPosition,
		key:         func(s string) string { return s },
	}
}

func normalizePosition(m []string, _ Rule) (string, bool) {
	s := strings.TrimSpace(group(m, 1))
	s = positionArticleRE.ReplaceAllString(s, "")
	s = positionJunkRE.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ".,;:-/& ")
	return s, s != ""
}

func validPosition(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 3 || n > 60 {
		return false
	}
	_, generic := genericTitles[strings.ToLower(s)]
	return !generic
}
