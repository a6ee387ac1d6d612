// Package extractor pulls structured job-posting fields out of free-text
// recruitment emails.
//
// Every field runs a table of competing pattern rules over the same cleaned
// text. A match is normalized, scored as the rule's base score plus named
// adjustments, clamped to [0,100], checked against the field's floor, and
// finally deduplicated by canonical value. An email only yields a posting
// when a company candidate clears CompanyGate.
package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/acavemancodes/Snistplacements/internal/types"
)

// CompanyGate is the confidence the top company candidate needs for an
// email to produce a posting.
const CompanyGate = 40

// Extractor is immutable after New and safe for concurrent use, provided the
// clock it was given is.
type Extractor struct {
	company  *fieldSpec[string]
	salary   *fieldSpec[Salary]
	deadline *fieldSpec[Deadline]
	link     *fieldSpec[Link]
	position *fieldSpec[string]

	now      func() time.Time
	maxInput int
}

type Option func(*Extractor)

// WithClock sets the clock deadlines are measured against.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// WithMaxInputBytes caps how much of each email is scanned. n <= 0 disables
// the cap.
func WithMaxInputBytes(n int) Option {
	return func(e *Extractor) { e.maxInput = n }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{now: time.Now, maxInput: DefaultMaxInputBytes}
	for _, opt := range opts {
		opt(e)
	}
	e.company = newCompanySpec()
	e.salary = newSalarySpec()
	e.deadline = newDeadlineSpec(e.now)
	e.link = newLinkSpec()
	e.position = newPositionSpec()
	return e
}

// Result holds the ranked candidates of every field for one email.
type Result struct {
	MessageID string
	Subject   string

	Companies []Candidate[string]
	Salaries  []Candidate[Salary]
	Deadlines []Candidate[Deadline]
	Links     []Candidate[Link]
	Positions []Candidate[string]
}

// Text builds the cleaned text the rules run over: subject and body, the
// body derived from the HTML part when there is no plain one. The sender
// address is not scanned.
func (e *Extractor) Text(email types.Email) string {
	body := email.BodyText
	if strings.TrimSpace(body) == "" && email.BodyHTML != "" {
		body = HTMLToText(email.BodyHTML)
	}

	parts := make([]string, 0, 2)
	for _, p := range []string{email.Subject, body} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return Preprocess(truncate(strings.Join(parts, "\n"), e.maxInput))
}

// Extract runs every field over the email. It returns nil when no company
// candidate reaches CompanyGate.
func (e *Extractor) Extract(email types.Email) *Result {
	text := e.Text(email)

	companies := e.company.extract(text)
	if len(companies) == 0 || companies[0].Confidence < CompanyGate {
		return nil
	}
	return &Result{
		MessageID: email.MessageID,
		Subject:   email.Subject,
		Companies: companies,
		Salaries:  e.salary.extract(text),
		Deadlines: e.deadline.extract(text),
		Links:     e.link.extract(text),
		Positions: e.position.extract(text),
	}
}

// Best assembles the posting from the top candidate of every field.
func (r *Result) Best() types.JobPosting {
	p := types.JobPosting{
		Salary:    types.NoSalary,
		LastDate:  types.NoLastDate,
		MessageID: r.MessageID,
		Subject:   r.Subject,
	}
	if len(r.Companies) > 0 {
		p.Company = r.Companies[0].Value
		p.Confidence.Company = r.Companies[0].Confidence
	}
	if len(r.Salaries) > 0 {
		p.Salary = r.Salaries[0].Value.Formatted
		p.Confidence.Salary = r.Salaries[0].Confidence
	}
	if len(r.Deadlines) > 0 {
		p.LastDate = r.Deadlines[0].Value.String()
		p.Confidence.LastDate = r.Deadlines[0].Confidence
	}
	if len(r.Links) > 0 {
		link := r.Links[0].Value.URL
		p.ApplicationLink = &link
		p.Confidence.ApplicationLink = r.Links[0].Confidence
	}
	if len(r.Positions) > 0 {
		title := r.Positions[0].Value
		p.Position = &title
		p.Confidence.Position = r.Positions[0].Confidence
	}

	p.HasValidData = p.Company != "" &&
		(p.HasSalary() || p.HasLastDate() || p.ApplicationLink != nil || p.Position != nil)

	p.DisplayText = p.Company
	if p.HasSalary() {
		p.DisplayText = fmt.Sprintf("%s (%s)", p.Company, p.Salary)
	}
	return p
}

// ExtractPosting returns the best posting for email, or false when the
// email has no acceptable company.
func (e *Extractor) ExtractPosting(email types.Email) (types.JobPosting, bool) {
	r := e.Extract(email)
	if r == nil {
		return types.JobPosting{}, false
	}
	return r.Best(), true
}

// TryExtract is ExtractPosting with a panic in the pipeline turned into an
// error.
func (e *Extractor) TryExtract(email types.Email) (p types.JobPosting, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, ok = types.JobPosting{}, false
			err = fmt.Errorf("extract %q: panic: %v", email.MessageID, r)
		}
	}()
	p, ok = e.ExtractPosting(email)
	return p, ok, nil
}

// ExtractBatch extracts every email in order and keeps the postings with
// valid data. An email that fails is skipped.
func (e *Extractor) ExtractBatch(emails []types.Email) []types.JobPosting {
	var out []types.JobPosting
	for _, email := range emails {
		p, ok, err := e.TryExtract(email)
		if err != nil || !ok || !p.HasValidData {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Candidates returns every ranked candidate for one field of text, with the
// adjustments that shaped each score.
func (e *Extractor) Candidates(field Field, text string) []Scored {
	text = Preprocess(truncate(text, e.maxInput))
	switch field {
	case FieldCompany:
		return e.company.scored(e.company.extract(text))
	case FieldSalary:
		return e.salary.scored(e.salary.extract(text))
	case FieldLastDate:
		return e.deadline.scored(e.deadline.extract(text))
	case FieldApplicationLink:
		return e.link.scored(e.link.extract(text))
	case FieldPosition:
		return e.position.scored(e.position.extract(text))
	}
	return nil
}

// Explain returns the ranked candidates of every field for one email.
func (e *Extractor) Explain(email types.Email) map[Field][]Scored {
	text := e.Text(email)
	out := make(map[Field][]Scored, len(Fields))
	for _, f := range Fields {
		c := e.Candidates(f, text)
		if c == nil {
			c = []Scored{}
		}
		out[f] = c
	}
	return out
}
