package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical rendering of a deadline.
const DateLayout = "2006-01-02"

// Deadline is a parsed application deadline. DaysUntil is the signed number
// of calendar days from the extractor's clock to Date.
type Deadline struct {
	Date      time.Time
	DaysUntil int
}

func (d Deadline) String() string { return d.Date.Format(DateLayout) }

const (
	deadlineKeyword = `\b(?:last[ \t]+date|deadline|due[ \t]+date|closing[ \t]+date|last[ \t]+day|apply[ \t]+by|register[ \t]+by|registration[ \t]+closes|applications?[ \t]+close)`
	deadlineSep     = `[^\n\d]{0,25}?`
	dateISO         = `\d{4}[-/]\d{1,2}[-/]\d{1,2}`
	dateNumeric     = `\d{1,2}[-/.]\d{1,2}[-/.](?:\d{4}|\d{2})`
	monthNames      = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`
	monthAbbr       = `(?:` + monthNames + `)\b\.?`
	dateMonthName   = `(?:\d{1,2}(?:st|nd|rd|th)?[ \t\-]*(?:of[ \t]+)?` + monthAbbr + `(?:[ \t,\-]*\d{4})?` +
		`|` + monthAbbr + `[ \t\-]*\d{1,2}(?:st|nd|rd|th)?(?:[ \t,]*\d{4})?)`
)

var deadlineRules = []Rule{
	{Name: "keyword_iso", BaseScore: 100,
		Pattern: `(?i)` + deadlineKeyword + deadlineSep + `(` + dateISO + `)\b`},
	{Name: "keyword_numeric", BaseScore: 95,
		Pattern: `(?i)` + deadlineKeyword + deadlineSep + `(` + dateNumeric + `)\b`},
	{Name: "keyword_month_name", BaseScore: 90,
		Pattern: `(?i)` + deadlineKeyword + deadlineSep + `(` + dateMonthName + `)`},
	{Name: "before_numeric", BaseScore: 85,
		Pattern: `(?i)\b(?:before|until|till|on[ \t]+or[ \t]+before)[ \t]+(` + dateNumeric + `|` + dateISO + `)\b`},
	{Name: "apply_before", BaseScore: 80,
		Pattern: `(?i)\b(?:apply|register|submit|respond)[^\n]{0,40}?\b(?:by|before|until|till)[ \t]+(` + dateMonthName + `)`},
	{Name: "keyword_relative", BaseScore: 70,
		Pattern: `(?i)` + deadlineKeyword + deadlineSep + `\b(today|tomorrow)\b`},
}

var deadlineMatchers = compileRules(FieldLastDate, deadlineRules)

var (
	isoDateRE      = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	numericDateRE  = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})$`)
	dayMonthDateRE = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?[\s\-]*(?:of\s+)?(` + monthNames + `)\.?(?:[\s,\-]*(\d{4}))?$`)
	monthDayDateRE = regexp.MustCompile(`^(` + monthNames + `)\.?[\s\-]*(\d{1,2})(?:st|nd|rd|th)?(?:[\s,]*(\d{4}))?$`)
)

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

var deadlineAdjustments = []adjustment[Deadline]{
	{name: "upcoming_within_year", delta: 20, when: func(d Deadline) bool { return d.DaysUntil > 0 && d.DaysUntil <= 365 }},
	{name: "past", delta: -40, when: func(d Deadline) bool { return d.DaysUntil < 0 }},
}

func newDeadlineSpec(now func() time.Time) *fieldSpec[Deadline] {
	return &fieldSpec[Deadline]{
		field: FieldLastDate,
		rules: deadlineMatchers,
		floor: 30,
		normalize: func(m []string, _ Rule) (Deadline, bool) {
			today := dateOnly(now())
			t, ok := ParseDate(group(m, 1), today)
			if !ok {
				return Deadline{}, false
			}
			return Deadline{Date: t, DaysUntil: int(t.Sub(today).Hours() / 24)}, true
		},
		adjustments: deadlineAdjustments,
		key:         Deadline.String,
	}
}

// ParseDate reads a deadline written as an ISO date, a day-first numeric
// date, a date with a month name, or "today"/"tomorrow" relative to now.
// Only real calendar dates are accepted; the result is midnight UTC.
func ParseDate(s string, now time.Time) (time.Time, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	today := dateOnly(now)

	switch s {
	case "today":
		return today, true
	case "tomorrow":
		return today.AddDate(0, 0, 1), true
	}

	if m := isoDateRE.FindStringSubmatch(s); m != nil {
		return makeDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := numericDateRE.FindStringSubmatch(s); m != nil {
		return makeDate(fullYear(m[3]), atoi(m[2]), atoi(m[1]))
	}
	if m := dayMonthDateRE.FindStringSubmatch(s); m != nil {
		return monthNameDate(m[3], m[2], m[1], today)
	}
	if m := monthDayDateRE.FindStringSubmatch(s); m != nil {
		return monthNameDate(m[3], m[1], m[2], today)
	}
	return time.Time{}, false
}

func monthNameDate(year, month, day string, today time.Time) (time.Time, bool) {
	if len(month) < 3 {
		return time.Time{}, false
	}
	mon, ok := months[month[:3]]
	if !ok {
		return time.Time{}, false
	}
	y := today.Year()
	if year != "" {
		y = atoi(year)
	}
	return makeDate(y, int(mon), atoi(day))
}

// makeDate builds a UTC date and rejects components that time.Date would
// silently roll over, such as February 30.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func fullYear(s string) int {
	y := atoi(s)
	if len(s) == 2 {
		y += 2000
	}
	return y
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
