package extractor

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkCandidates(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		text     string
		want     string
		wantRule string
		wantConf int
	}{
		{name: "labelled careers host", text: "Apply here: https://careers.infosys.com.", want: "https://careers.infosys.com", wantRule: "labelled", wantConf: 100},
		{name: "linkedin job", text: "https://www.linkedin.com/jobs/view/12345", want: "https://www.linkedin.com/jobs/view/12345", wantRule: "job_board", wantConf: 100},
		{name: "google form", text: "Register using https://forms.gle/abc123XYZ", want: "https://forms.gle/abc123XYZ", wantRule: "labelled", wantConf: 100},
		{name: "careers path in parens", text: "(see https://example.com/careers/openings)", want: "https://example.com/careers/openings", wantRule: "careers_path", wantConf: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Candidates(FieldApplicationLink, tt.text)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0].Canonical)
			assert.Equal(t, tt.wantRule, got[0].Rule)
			assert.Equal(t, tt.wantConf, got[0].Confidence)
		})
	}
}

func TestLinkCandidates_LongURLPenalised(t *testing.T) {
	e := New()
	long := "https://example.com/" + strings.Repeat("x", 100)

	got := e.Candidates(FieldApplicationLink, "Apply: "+long)
	require.Len(t, got, 1)
	assert.Equal(t, 90, got[0].Confidence)
	assert.Equal(t, []string{"very_long"}, got[0].Adjustments)
}

func TestLinkCandidates_Rejected(t *testing.T) {
	e := New()
	assert.Empty(t, e.Candidates(FieldApplicationLink, "Apply: https://a"))
	assert.Empty(t, e.Candidates(FieldApplicationLink, "Apply at www.infosys.com"))
}

func TestClassifyLink(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.linkedin.com/jobs/view/1", LinkLinkedInJob},
		{"https://www.linkedin.com/company/infosys", LinkGeneral},
		{"https://in.indeed.com/viewjob?jk=1", LinkJobBoard},
		{"https://www.naukri.com/job-listings-1", LinkJobBoard},
		{"https://docs.google.com/forms/d/e/1/viewform", LinkApplicationForm},
		{"https://acme.typeform.com/to/abc", LinkApplicationForm},
		{"https://example.com/careers", LinkCareerPage},
		{"https://jobs.example.com/123", LinkCareerPage},
		{"https://example.com/about", LinkGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, classifyLink(u))
		})
	}
}
