package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPositionCandidates(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		text     string
		want     string
		wantRule string
		wantConf int
	}{
		{name: "label", text: "Position: Software Engineer", want: "Software Engineer", wantRule: "label", wantConf: 100},
		{name: "hiring for stops at preposition", text: "We are hiring for Data Analyst at Infosys", want: "Data Analyst", wantRule: "hiring_for", wantConf: 100},
		{name: "join as stops at paren", text: "Join us as a Backend Developer (Remote)", want: "Backend Developer", wantRule: "join_as", wantConf: 100},
		{name: "digits without seniority", text: "Role: Member 42", want: "Member 42", wantRule: "label", wantConf: 80},
		{name: "wordy title", text: "Position: North Zone Paper Sales Field Coordinator", want: "North Zone Paper Sales Field Coordinator", wantRule: "label", wantConf: 85},
		{name: "vacancy", text: "There is a vacancy for Graduate Trainee.", want: "Graduate Trainee", wantRule: "vacancy", wantConf: 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Candidates(FieldPosition, tt.text)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.want, got[0].Canonical)
			assert.Equal(t, tt.wantRule, got[0].Rule)
			assert.Equal(t, tt.wantConf, got[0].Confidence)
		})
	}
}

func TestPositionCandidates_GenericRejected(t *testing.T) {
	e := New()
	assert.Empty(t, e.Candidates(FieldPosition, "Position: Job"))
	assert.Empty(t, e.Candidates(FieldPosition, "Role: Work"))
}
