package extractor

import (
	"fmt"
	"regexp"
)

// Field identifies one of the five job-posting fields the extractor fills.
type Field int

const (
	FieldCompany Field = iota
	FieldSalary
	FieldLastDate
	FieldApplicationLink
	FieldPosition
)

// Fields lists every field in aggregation order.
var Fields = []Field{FieldCompany, FieldSalary, FieldLastDate, FieldApplicationLink, FieldPosition}

func (f Field) String() string {
	switch f {
	case FieldCompany:
		return "company"
	case FieldSalary:
		return "salary"
	case FieldLastDate:
		return "lastDate"
	case FieldApplicationLink:
		return "applicationLink"
	case FieldPosition:
		return "position"
	}
	return fmt.Sprintf("field(%d)", int(f))
}

func (f Field) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// ParseField converts a field name as printed by String back to a Field.
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if f.String() == s {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", s)
}

func (f *Field) UnmarshalText(b []byte) error {
	v, err := ParseField(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Rule is one phrasing idiom for a field. Normalizers read the value from
// the first capture group, falling back to the whole match.
type Rule struct {
	Name      string
	Pattern   string
	BaseScore int
	// Domain marks rules that capture a bare e-mail domain label.
	Domain bool
}

type compiledRule struct {
	Rule
	re *regexp.Regexp
}

// Candidate is one scored extraction for a field.
type Candidate[T any] struct {
	Field      Field
	Rule       string
	Raw        string
	Value      T
	Confidence int
}

// Scored is the field-independent view of a candidate.
type Scored struct {
	Field       Field    `json:"field"`
	Rule        string   `json:"rule"`
	Raw         string   `json:"raw"`
	Canonical   string   `json:"canonical"`
	Confidence  int      `json:"confidence"`
	Adjustments []string `json:"adjustments,omitempty"` // names of the adjustments that fired
}

// adjustment is a named confidence bonus or penalty.
type adjustment[T any] struct {
	name  string
	delta int
	when  func(T) bool
}

// fieldSpec bundles the matcher, normalizer, scoring policy and validator
// of one field.
type fieldSpec[T any] struct {
	field       Field
	rules       []compiledRule
	floor       int
	normalize   func(m []string, r Rule) (T, bool)
	adjustments []adjustment[T]
	validate    func(T) bool
	key         func(T) string
}

func compileRules(field Field, rules []Rule) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			panic(fmt.Sprintf("extractor: %s rule %q: %v", field, r.Name, err))
		}
		compiled = append(compiled, compiledRule{Rule: r, re: re})
	}
	return compiled
}

// extract runs every rule over text and returns the ranked candidates
// that clear the field's floor.
func (s *fieldSpec[T]) extract(text string) []Candidate[T] {
	var out []Candidate[T]
	for _, r := range s.rules {
		for _, m := range r.re.FindAllStringSubmatch(text, -1) {
			if c, ok := s.candidate(r.Rule, m); ok {
				out = append(out, c)
			}
		}
	}
	return rank(out, s.key)
}

func (s *fieldSpec[T]) candidate(r Rule, m []string) (Candidate[T], bool) {
	v, ok := s.normalize(m, r)
	if !ok {
		return Candidate[T]{}, false
	}
	conf := clamp(r.BaseScore + s.score(v))
	if conf < s.floor || (s.validate != nil && !s.validate(v)) {
		return Candidate[T]{}, false
	}
	return Candidate[T]{Field: s.field, Rule: r.Name, Raw: m[0], Value: v, Confidence: conf}, true
}

// group returns capture group i of m, or the whole match when the group is
// absent or empty.
func group(m []string, i int) string {
	if i < len(m) && m[i] != "" {
		return m[i]
	}
	return m[0]
}

// optGroup returns capture group i of m or "".
func optGroup(m []string, i int) string {
	if i < len(m) {
		return m[i]
	}
	return ""
}

// score sums the deltas of every adjustment that applies to v.
func (s *fieldSpec[T]) score(v T) int {
	total := 0
	for _, a := range s.adjustments {
		if a.when(v) {
			total += a.delta
		}
	}
	return total
}

// applied returns the names of the adjustments that fire for v.
func (s *fieldSpec[T]) applied(v T) []string {
	var names []string
	for _, a := range s.adjustments {
		if a.when(v) {
			names = append(names, a.name)
		}
	}
	return names
}

func (s *fieldSpec[T]) scored(cands []Candidate[T]) []Scored {
	out := make([]Scored, 0, len(cands))
	for _, c := range cands {
		out = append(out, Scored{
			Field:       c.Field,
			Rule:        c.Rule,
			Raw:         c.Raw,
			Canonical:   s.key(c.Value),
			Confidence:  c.Confidence,
			Adjustments: s.applied(c.Value),
		})
	}
	return out
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
