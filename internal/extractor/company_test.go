package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyCandidates(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		text     string
		want     string
		wantRule string
		wantConf int
	}{
		{name: "explicit label", text: "Company: Infosys", want: "Infosys", wantRule: "label", wantConf: 100},
		{name: "is hiring", text: "Wipro is hiring freshers", want: "Wipro", wantRule: "is_hiring", wantConf: 90},
		{name: "short name penalised", text: "TCS is hiring for Software Engineer", want: "TCS", wantRule: "is_hiring", wantConf: 80},
		{name: "is conducting", text: "Dear Students,\nGoogle is conducting a campus drive.", want: "Google", wantRule: "is_hiring", wantConf: 90},
		{name: "greeting stripped", text: "Dear Students Infosys is hiring", want: "Infosys", wantRule: "is_hiring", wantConf: 90},
		{name: "join us at", text: "Join us at Wipro as an intern", want: "Wipro", wantRule: "join_us", wantConf: 88},
		{name: "legal suffixes stripped", text: "Freshworks Technologies Pvt Ltd is hiring", want: "Freshworks Technologies", wantRule: "is_hiring", wantConf: 100},
		{name: "suffix and unit word", text: "Company: Tata Group", want: "Tata Group", wantRule: "label", wantConf: 95},
		{name: "long all caps", text: "Company: ACCENTURE", want: "ACCENTURE", wantRule: "label", wantConf: 85},
		{name: "domain fallback", text: "Reach out to hr@mail.zoho.com", want: "Zoho", wantRule: "any_domain", wantConf: 50},
		{name: "sender domain", text: "From: HR <hr@infosys.com>", want: "Infosys", wantRule: "from_domain", wantConf: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Candidates(FieldCompany, tt.text)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0].Canonical)
			assert.Equal(t, tt.wantRule, got[0].Rule)
			assert.Equal(t, tt.wantConf, got[0].Confidence)
		})
	}
}

func TestCompanyCandidates_Rejected(t *testing.T) {
	e := New()

	tests := []struct {
		name string
		text string
	}{
		{name: "no company phrase", text: "Please submit your assignment by Friday."},
		{name: "placeholder", text: "Company: Unknown"},
		{name: "boilerplate words only", text: "Regards Team is hiring"},
		{name: "free mail domain", text: "contact someone@gmail.com"},
		{name: "numeric", text: "Company: 12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, e.Candidates(FieldCompany, tt.text))
		})
	}
}

func TestCompanyCandidates_DistinctNamesKept(t *testing.T) {
	e := New()

	got := e.Candidates(FieldCompany, "Infosys Technologies is hiring freshers.\nFrom: hr@infosys.com")
	require.Len(t, got, 2)
	assert.Equal(t, "Infosys Technologies", got[0].Canonical)
	assert.Equal(t, "Infosys", got[1].Canonical)
	assert.Greater(t, got[0].Confidence, got[1].Confidence)
	assert.Contains(t, got[0].Adjustments, "legal_or_industry_suffix")
}

func TestNormalizeCompany(t *testing.T) {
	tests := []struct {
		raw    string
		domain bool
		want   string
	}{
		{raw: "The Acme Corporation", want: "Acme"},
		{raw: "Zoho Pvt. Ltd.", want: "Zoho"},
		{raw: "Infosys.", want: "Infosys"},
		{raw: "red-hat", domain: true, want: "Red Hat"},
		{raw: "Acme™ Labs", want: "Acme Labs"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := normalizeCompany([]string{tt.raw, tt.raw}, Rule{Domain: tt.domain})
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
