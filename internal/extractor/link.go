package extractor

import (
	"net/url"
	"regexp"
	"strings"
)

// Link kinds.
const (
	LinkCareerPage      = "career_page"
	LinkLinkedInJob     = "linkedin_job"
	LinkJobBoard        = "job_board"
	LinkApplicationForm = "application_form"
	LinkGeneral         = "general"
)

// Link is a validated application URL and its classification.
type Link struct {
	URL  string
	Kind string
}

const linkURL = `(https?://[^\s<>"']+)`

var linkRules = []Rule{
	{Name: "labelled", BaseScore: 95,
		Pattern: `(?i)\b(?:apply|application|register|registration)\b[^\n]{0,30}?` + linkURL},
	{Name: "careers_host", BaseScore: 90,
		Pattern: `(?i)(https?://(?:careers?|jobs)\.[^\s<>"']+)`},
	{Name: "job_board", BaseScore: 85,
		Pattern: `(?i)(https?://(?:[a-z0-9-]+\.)*(?:linkedin\.com/jobs|naukri\.com|indeed\.com|glassdoor\.[a-z.]+|monster\.com|internshala\.com|wellfound\.com|unstop\.com)[^\s<>"']*)`},
	{Name: "apply_at", BaseScore: 85,
		Pattern: `(?i)\b(?:apply|visit)[ \t]+(?:at|on|via)[ \t]+` + linkURL},
	{Name: "careers_path", BaseScore: 80,
		Pattern: `(?i)(https?://[^\s<>"'/]+/(?:[^\s<>"']*/)?(?:careers?|jobs?|apply|openings|vacancies)\b[^\s<>"']*)`},
	{Name: "form", BaseScore: 80,
		Pattern: `(?i)(https?://(?:docs\.google\.com/forms|forms\.gle|forms\.office\.com|(?:[a-z0-9-]+\.)?typeform\.com|form\.jotform\.com)[^\s<>"']*)`},
}

var linkMatchers = compileRules(FieldApplicationLink, linkRules)

var (
	applyWordRE = regexp.MustCompile(`(?i)apply|application|career|hiring|recruit`)
	jobBoardRE  = regexp.MustCompile(`(?i)(?:^|\.)(?:indeed|glassdoor|naukri|monster|internshala|wellfound|unstop)\.`)
	formHostRE  = regexp.MustCompile(`(?i)^(?:docs\.google\.com/forms|forms\.gle|forms\.office\.com|(?:[a-z0-9-]+\.)?typeform\.com|form\.jotform\.com)`)
	careerURLRE = regexp.MustCompile(`(?i)career|jobs?\b|apply|recruit`)
)

var linkAdjustments = []adjustment[Link]{
	{name: "apply_keyword", delta: 25, when: func(l Link) bool { return applyWordRE.MatchString(l.URL) }},
	{name: "job_board", delta: 20, when: func(l Link) bool { return l.Kind == LinkJobBoard || l.Kind == LinkLinkedInJob }},
	{name: "form_host", delta: 15, when: func(l Link) bool { return l.Kind == LinkApplicationForm }},
	{name: "very_long", delta: -5, when: func(l Link) bool { return len(l.URL) > 100 }},
}

func newLinkSpec() *fieldSpec[Link] {
	return &fieldSpec[Link]{
		field:       FieldApplicationLink,
		rules:       linkMatchers,
		floor:       40,
		normalize:   normalizeLink,
		adjustments: linkAdjustments,
		key:         func(l Link) string { return l.URL },
	}
}

func normalizeLink(m []string, _ Rule) (Link, bool) {
	raw := strings.TrimRight(group(m, 1), `.,;:)]}>!?'"`)
	if len(raw) < 10 || len(raw) >= 1000 {
		return Link{}, false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Link{}, false
	}
	return Link{URL: raw, Kind: classifyLink(u)}, true
}

// classifyLink tries the most specific kinds first.
func classifyLink(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	hostPath := host + strings.ToLower(u.EscapedPath())
	switch {
	case strings.HasSuffix(host, "linkedin.com") && strings.HasPrefix(strings.ToLower(u.Path), "/jobs"):
		return LinkLinkedInJob
	case jobBoardRE.MatchString(host):
		return LinkJobBoard
	case formHostRE.MatchString(hostPath):
		return LinkApplicationForm
	case careerURLRE.MatchString(hostPath):
		return LinkCareerPage
	}
	return LinkGeneral
}
