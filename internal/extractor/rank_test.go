package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(s string) string { return s }

func TestRank_KeepsMostConfidentPerKey(t *testing.T) {
	cands := []Candidate[string]{
		{Rule: "a", Value: "Infosys", Confidence: 70},
		{Rule: "b", Value: "infosys ", Confidence: 90},
		{Rule: "c", Value: "Wipro", Confidence: 90},
		{Rule: "d", Value: "  ", Confidence: 99},
		{Rule: "e", Value: "TCS", Confidence: 95},
	}

	got := rank(cands, identity)
	require.Len(t, got, 3)
	assert.Equal(t, "TCS", got[0].Value)
	assert.Equal(t, "b", got[1].Rule)
	assert.Equal(t, "Wipro", got[2].Value)
}

func TestRank_TiesKeepFirstSeen(t *testing.T) {
	cands := []Candidate[string]{
		{Rule: "first", Value: "Acme", Confidence: 80},
		{Rule: "second", Value: "ACME", Confidence: 80},
		{Rule: "other", Value: "Zeta", Confidence: 80},
	}

	got := rank(cands, identity)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Rule)
	assert.Equal(t, "other", got[1].Rule)
}

func TestRank_Idempotent(t *testing.T) {
	cands := []Candidate[string]{
		{Value: "b", Confidence: 10},
		{Value: "a", Confidence: 50},
		{Value: "B", Confidence: 60},
		{Value: "c", Confidence: 50},
		{Value: "a", Confidence: 20},
	}

	once := rank(cands, identity)
	assert.Equal(t, once, rank(once, identity))
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, rank[string](nil, identity))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-25))
	assert.Equal(t, 55, clamp(55))
	assert.Equal(t, 100, clamp(130))
}

func TestFieldSpec_ClampsBeforeFloor(t *testing.T) {
	spec := &fieldSpec[string]{
		field: FieldPosition,
		rules: compileRules(FieldPosition, []Rule{
			{Name: "high", Pattern: `HIGH`, BaseScore: 95},
			{Name: "low", Pattern: `LOW`, BaseScore: 10},
		}),
		floor:     0,
		normalize: func(m []string, r Rule) (string, bool) { return r.Name, true },
		adjustments: []adjustment[string]{
			{name: "boost", delta: 50, when: func(s string) bool { return s == "high" }},
			{name: "sink", delta: -50, when: func(s string) bool { return s == "low" }},
		},
		key: identity,
	}

	got := spec.extract("HIGH and LOW")
	require.Len(t, got, 2)
	assert.Equal(t, 100, got[0].Confidence)
	assert.Equal(t, 0, got[1].Confidence)

	scored := spec.scored(got)
	assert.Equal(t, []string{"boost"}, scored[0].Adjustments)
	assert.Equal(t, []string{"sink"}, scored[1].Adjustments)
}

func TestCompileRules_PanicsOnBadPattern(t *testing.T) {
	assert.Panics(t, func() {
		compileRules(FieldCompany, []Rule{{Name: "broken", Pattern: `(`}})
	})
}

func TestParseField(t *testing.T) {
	for _, f := range Fields {
		got, err := ParseField(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseField("employer")
	assert.Error(t, err)
}
