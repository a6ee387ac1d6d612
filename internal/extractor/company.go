package extractor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// companyName matches up to five capitalised words, allowing "&" between
// them ("Procter & Gamble").
const companyName = `[A-Z][\w&'.-]*(?:[ \t]+(?:&[ \t]+)?[A-Z][\w&'.-]*){0,4}`

var companyRules = []Rule{
	{Name: "label", BaseScore: 100,
		Pattern: `(?i:company|organi[sz]ation|employer|firm|corporation)(?i:[ \t]+name)?[ \t]*[:\-][ \t]*(` + companyName + `)`},
	{Name: "sender_hiring", BaseScore: 95,
		Pattern: `\b(?i:from|by|at|with)[ \t]+(` + companyName + `)[ \t]+(?i:is|are|has|invites|seeks|hiring|recruiting)\b`},
	{Name: "is_hiring", BaseScore: 90,
		Pattern: `(` + companyName + `)[ \t]+(?i:is|are)[ \t]+(?i:hiring|recruiting|looking|seeking|conducting|inviting)\b`},
	{Name: "join_us", BaseScore: 88,
		Pattern: `\b(?i:join)[ \t]+(?i:our[ \t]+team[ \t]+at[ \t]+|us[ \t]+at[ \t]+)?(` + companyName + `)(?:[ \t]+(?i:as|for|in)\b|[ \t]*!)`},
	{Name: "legal_suffix", BaseScore: 85,
		Pattern: `([A-Z][\w&'.-]*(?:[ \t]+[A-Z][\w&'.-]*){0,3}[ \t]+(?i:technologies|tech|systems|solutions|services|consulting|software|labs|pvt|ltd|inc|corp|limited)\b\.?)`},
	{Name: "opportunity_at", BaseScore: 80,
		Pattern: `\b(?i:career|job|position|opportunity|opening|role|internship)s?[ \t]+(?i:at|with)[ \t]+(` + companyName + `)`},
	{Name: "name_opening", BaseScore: 75,
		Pattern: `(` + companyName + `)[ \t]+(?i:careers?|jobs?|positions?|opportunit(?:y|ies)|openings?|campus[ \t]+drive|recruitment[ \t]+drive|placement[ \t]+drive)\b`},
	{Name: "from_domain", BaseScore: 60, Domain: true,
		Pattern: `(?i:from):[^\n@]{0,80}@(?:[A-Za-z0-9-]+\.)*?([A-Za-z0-9-]+)\.(?i:com|org|net|edu|gov|in|io|co)\b`},
	{Name: "any_domain", BaseScore: 50, Domain: true,
		Pattern: `@(?:[A-Za-z0-9-]+\.)*?([A-Za-z0-9-]+)\.(?i:com|org|net|edu|gov)\b`},
}

var companyMatchers = compileRules(FieldCompany, companyRules)

var (
	companyArticleRE = regexp.MustCompile(`(?i)^(?:the|a|an)\s+`)
	companyLegalRE   = regexp.MustCompile(`(?i)[\s,]+(?:inc|ltd|llc|corp|corporation|company|co|pvt|private|limited)\.?$`)
	companyJunkRE    = regexp.MustCompile(`[^\w\s&'.-]`)
	companySuffixRE  = regexp.MustCompile(`(?i)\b(?:technologies|tech|systems|solutions|services|consulting|software|labs|inc|ltd|corp|pvt|limited|company|co|enterprises|ventures|group|industries)\b`)
	companyUnitRE    = regexp.MustCompile(`(?i)\b(?:team|department|group|division|alert|security)\b`)
	allCapsRE        = regexp.MustCompile(`^[A-Z]+$`)
	numericRE        = regexp.MustCompile(`^[\d\s.,]+$`)
)

// companyStopwords are words that never appear in an employer name but do
// show up capitalised in mail boilerplate.
var companyStopwords = wordSet(`
	company job jobs career careers position role work hiring apply application applications
	email team department alert security notification message system automatic noreply
	kindly prepare accordingly please note important urgent deadline submit send reply
	forward cc bcc subject regards best thanks thank you your sincerely dear hello hi
	greetings congratulations we our students student program training internship
	workshop course session registering registration enrollment form survey feedback
	evaluation assessment top companies last date salary package ctc link click here
	gmail googlemail yahoo outlook hotmail rediffmail`)

var companyPlaceholders = wordSet(`unknown n/a na null none nil tbd tba`)

var companyAdjustments = []adjustment[string]{
	{name: "legal_or_industry_suffix", delta: 15, when: companySuffixRE.MatchString},
	{name: "generic_unit_word", delta: -20, when: companyUnitRE.MatchString},
	{name: "very_short", delta: -10, when: func(s string) bool { return utf8.RuneCountInString(s) < 4 }},
	{name: "long_all_caps", delta: -15, when: func(s string) bool { return len(s) > 8 && allCapsRE.MatchString(s) }},
}

func newCompanySpec() *fieldSpec[string] {
	return &fieldSpec[string]{
		field:       FieldCompany,
		rules:       companyMatchers,
		floor:       40,
		normalize:   normalizeCompany,
		adjustments: companyAdjustments,
		validate:    validCompany,
		key:         func(s string) string { return s },
	}
}

func normalizeCompany(m []string, r Rule) (string, bool) {
	s := strings.TrimSpace(group(m, 1))
	s = strings.TrimRight(s, ".,;:!?'-")
	if !plausibleCompanyRaw(s) {
		return "", false
	}

	if r.Domain || strings.Contains(s, ".") {
		if i := strings.IndexByte(s, '.'); i >= 0 {
			s = s[:i]
		}
		s = titleWords(strings.NewReplacer("-", " ", "_", " ").Replace(s))
	}

	s = companyArticleRE.ReplaceAllString(s, "")
	for {
		t := companyLegalRE.ReplaceAllString(s, "")
		if t == s {
			break
		}
		s = t
	}
	s = companyJunkRE.ReplaceAllString(s, "")

	// Greetings often lead the match: "Dear Students Infosys".
	words := strings.Fields(s)
	for len(words) > 0 {
		w := strings.ToLower(words[0])
		if _, stop := companyStopwords[w]; !stop && w != "the" && w != "a" && w != "an" {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " "), true
}

func plausibleCompanyRaw(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 50 || numericRE.MatchString(s) {
		return false
	}
	lower := strings.ToLower(s)
	if _, ok := companyPlaceholders[lower]; ok {
		return false
	}
	for _, bad := range []string{"@", "http", "www", "mail"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

func validCompany(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 3 || n > 30 {
		return false
	}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		if _, stop := companyStopwords[w]; stop {
			return false
		}
		if _, ok := companyPlaceholders[w]; ok {
			return false
		}
	}
	return true
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func wordSet(list string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(list) {
		set[w] = struct{}{}
	}
	return set
}
