package extractor

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Salary is a normalized pay figure. Max equals Min for a single amount.
type Salary struct {
	Currency  string
	Min       float64
	Max       float64
	Period    string
	Formatted string
}

// IsRange reports whether the salary is a min-max range.
func (s Salary) IsRange() bool { return s.Max > s.Min }

const (
	PerHour  = "per hour"
	PerMonth = "per month"
	PerAnnum = "per annum"
)

const (
	salaryAmount   = `(\d+(?:,\d{2,3})*(?:\.\d{1,2})?)`
	salaryCurrency = `(?:₹|\$|£|€|\b(?:rs\.?|inr|usd|gbp|eur))`
	salaryUnit     = `(?:k|thousand|lakhs?|lacs?|lpa|million|crores?)\b`
	salaryDash     = `[ \t]*(?:-|–|to)[ \t]*`
	salaryPer      = `(?:[ \t]*(?:per|/|a)[ \t]*(?:annum|year|yr|month|hour|hr))?`
)

var salaryRules = []Rule{
	{Name: "keyword_amount", BaseScore: 95,
		Pattern: `(?i)\b(?:salary|stipend|package|compensation|remuneration|pay)[ \t]*(?:of|is|:|-|will[ \t]+be)?[ \t]*(?:up[ \t]+to[ \t]+)?` +
			salaryCurrency + `?[ \t]*` + salaryAmount + `(?:[ \t]*` + salaryUnit + `)?` +
			`(?:` + salaryDash + salaryCurrency + `?[ \t]*` + salaryAmount + `(?:[ \t]*` + salaryUnit + `)?)?` + salaryPer},
	{Name: "lpa", BaseScore: 90,
		Pattern: `(?i)` + salaryAmount + `(?:` + salaryDash + salaryAmount + `)?[ \t]*(?:lpa\b|l\.p\.a\b|lakhs?[ \t]+per[ \t]+annum)`},
	{Name: "symbol_range", BaseScore: 85,
		Pattern: `(?i)` + salaryCurrency + `[ \t]*` + salaryAmount + `(?:[ \t]*` + salaryUnit + `)?` +
			`(?:` + salaryDash + salaryCurrency + `?[ \t]*` + salaryAmount + `(?:[ \t]*` + salaryUnit + `)?)?` + salaryPer},
	{Name: "package_range_lpa", BaseScore: 85,
		Pattern: `(?i)\b(?:package|ctc)[^\n\d]{0,20}` + salaryAmount + salaryDash + salaryAmount + `[ \t]*(?:lpa|lakhs?|lacs?)\b`},
	{Name: "ctc", BaseScore: 80,
		Pattern: `(?i)\bctc\b[^\n\d]{0,20}` + salaryAmount + `(?:` + salaryDash + salaryAmount + `)?(?:[ \t]*` + salaryUnit + `)?`},
}

var salaryMatchers = compileRules(FieldSalary, salaryRules)

var (
	salaryUnitRE = regexp.MustCompile(`(?i)\d[ \t]*(k|thousand|lakhs?|lacs?|lpa|l\.p\.a|million|crores?)\b`)
	hourlyRE     = regexp.MustCompile(`(?i)\b(?:hour|hr|hourly)\b`)
	monthlyRE    = regexp.MustCompile(`(?i)\b(?:month|monthly|mo)\b`)
)

var salaryAdjustments = []adjustment[Salary]{
	{name: "range", delta: 10, when: Salary.IsRange},
	{name: "plausible_inr", delta: 15, when: func(s Salary) bool { return s.Currency == "₹" && plausibleINR(s.Min) }},
	{name: "plausible_usd", delta: 15, when: func(s Salary) bool { return s.Currency == "$" && plausibleUSD(s.Min) }},
	{name: "implausible_amount", delta: -10, when: func(s Salary) bool {
		return !(s.Currency == "₹" && plausibleINR(s.Min)) && !(s.Currency == "$" && plausibleUSD(s.Min))
	}},
}

func plausibleINR(v float64) bool { return v >= 50_000 && v <= 50_000_000 }
func plausibleUSD(v float64) bool { return v >= 30_000 && v <= 500_000 }

func newSalarySpec() *fieldSpec[Salary] {
	return &fieldSpec[Salary]{
		field:       FieldSalary,
		rules:       salaryMatchers,
		floor:       50,
		normalize:   normalizeSalary,
		adjustments: salaryAdjustments,
		validate:    func(s Salary) bool { return s.Min >= 1000 && s.Formatted != "" },
		key:         func(s Salary) string { return s.Formatted },
	}
}

func normalizeSalary(m []string, _ Rule) (Salary, bool) {
	text := m[0]
	scale := unitMultiplier(text)

	lo, ok := parseAmount(optGroup(m, 1))
	if !ok {
		return Salary{}, false
	}
	lo *= scale
	hi := lo
	if v, ok := parseAmount(optGroup(m, 2)); ok && v*scale > lo {
		hi = v * scale
	}

	s := Salary{
		Currency: detectCurrency(text),
		Min:      lo,
		Max:      hi,
		Period:   detectPeriod(text),
	}
	s.Formatted = formatSalary(s)
	return s, true
}

func parseAmount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func unitMultiplier(text string) float64 {
	m := salaryUnitRE.FindStringSubmatch(text)
	if m == nil {
		return 1
	}
	switch u := strings.ToLower(m[1]); {
	case u == "k" || u == "thousand":
		return 1e3
	case u == "million":
		return 1e6
	case strings.HasPrefix(u, "crore"):
		return 1e7
	default:
		return 1e5
	}
}

func detectCurrency(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(text, "$") || strings.Contains(lower, "usd"):
		return "$"
	case strings.Contains(text, "£") || strings.Contains(lower, "gbp"):
		return "£"
	case strings.Contains(text, "€") || strings.Contains(lower, "eur"):
		return "€"
	}
	return "₹"
}

func detectPeriod(text string) string {
	switch {
	case hourlyRE.MatchString(text):
		return PerHour
	case monthlyRE.MatchString(text):
		return PerMonth
	}
	return PerAnnum
}

func formatSalary(s Salary) string {
	amount := func(v float64) string {
		return s.Currency + humanize.Commaf(math.Round(v*100)/100)
	}
	if s.IsRange() {
		return amount(s.Min) + " - " + amount(s.Max) + " " + s.Period
	}
	return amount(s.Min) + " " + s.Period
}
