package types

import "time"

// Email is one message handed over by the mail-fetching side. Only Subject
// and the body fields feed the extractor; the rest is carried through for
// export and logging.
type Email struct {
	ID        string    `json:"id,omitempty"`
	From      string    `json:"from,omitempty"`
	Subject   string    `json:"subject"`
	Date      time.Time `json:"date,omitempty"`
	BodyText  string    `json:"body"`
	BodyHTML  string    `json:"body_html,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Folder    string    `json:"folder,omitempty"`
}

const (
	NoSalary   = "N/A"     // 未识别薪资
	NoLastDate = "Unknown" // 未识别截止日期
)

// Scores holds the confidence of the top candidate of every field, 0 when
// the field had no candidate.
type Scores struct {
	Company         int `json:"company"`
	Salary          int `json:"salary"`
	LastDate        int `json:"lastDate"`
	ApplicationLink int `json:"applicationLink"`
	Position        int `json:"position"`
}

type JobPosting struct {
	Company         string  `json:"company"`
	Salary          string  `json:"salary"`
	LastDate        string  `json:"lastDate"`
	ApplicationLink *string `json:"applicationLink"`
	Position        *string `json:"position"`
	DisplayText     string  `json:"displayText"`
	HasValidData    bool    `json:"hasValidData"`
	Confidence      Scores  `json:"confidence"`

	MessageID string `json:"messageId,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// HasSalary reports whether a salary was extracted.
func (p JobPosting) HasSalary() bool { return p.Salary != "" && p.Salary != NoSalary }

// HasLastDate reports whether a deadline was extracted.
func (p JobPosting) HasLastDate() bool { return p.LastDate != "" && p.LastDate != NoLastDate }

// Link returns the application link or "".
func (p JobPosting) Link() string {
	if p.ApplicationLink == nil {
		return ""
	}
	return *p.ApplicationLink
}

// Title returns the position or "".
func (p JobPosting) Title() string {
	if p.Position == nil {
		return ""
	}
	return *p.Position
}
