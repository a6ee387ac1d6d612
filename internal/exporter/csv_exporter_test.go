package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acavemancodes/Snistplacements/internal/types"
)

func ptr(s string) *string { return &s }

func postings() []types.JobPosting {
	return []types.JobPosting{
		{
			Company: "Infosys", Salary: "₹600,000 per annum", LastDate: "2026-02-10",
			ApplicationLink: ptr("https://careers.infosys.com/apply"), Position: ptr("Systems Engineer"),
			DisplayText: "Infosys (₹600,000 per annum)", HasValidData: true,
			Confidence: types.Scores{Company: 100, Salary: 100, LastDate: 100},
			MessageID:  "m1", Subject: "Infosys hiring, batch 2026",
		},
		{
			Company: "Wipro", Salary: types.NoSalary, LastDate: "2026-03-01",
			DisplayText: "Wipro", HasValidData: true, MessageID: "m2",
		},
		{
			Company: "Infosys", Salary: types.NoSalary, LastDate: types.NoLastDate,
			ApplicationLink: ptr("https://forms.gle/abc123"), DisplayText: "Infosys", HasValidData: true,
			MessageID: "m3",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, postings()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"Infosys", "Systems Engineer", "₹600,000 per annum", "2026-02-10",
		"https://careers.infosys.com/apply", "Infosys (₹600,000 per annum)",
		"100", "100", "100", "m1", "Infosys hiring, batch 2026",
	}, rows[1])
	assert.Equal(t, "", rows[2][1], "missing position is an empty cell")
	assert.Equal(t, types.NoLastDate, rows[3][3])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, postings()[1:2]))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Wipro", got[0]["company"])
	assert.Nil(t, got[0]["applicationLink"])
	assert.Nil(t, got[0]["position"])
}

func TestSummarize(t *testing.T) {
	st := Summarize(postings())
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.WithSalary)
	assert.Equal(t, 2, st.WithLastDate)
	assert.Equal(t, 2, st.WithLink)
	assert.Equal(t, 1, st.WithPosition)
	assert.Equal(t, 2, st.Companies)
	assert.Equal(t, []CompanyCount{{"Infosys", 2}, {"Wipro", 1}}, st.TopCompanies)
}

func TestSummarize_TopTen(t *testing.T) {
	var ps []types.JobPosting
	for _, c := range strings.Split("Alpha Bravo Charlie Delta Echo Foxtrot Golf Hotel India Juliet Kilo Lima", " ") {
		ps = append(ps, types.JobPosting{Company: c})
	}
	ps = append(ps, types.JobPosting{Company: "Lima"})

	st := Summarize(ps)
	assert.Equal(t, 12, st.Companies)
	require.Len(t, st.TopCompanies, 10)
	assert.Equal(t, CompanyCount{"Lima", 2}, st.TopCompanies[0])
	assert.Equal(t, "Alpha", st.TopCompanies[1].Company)
}

func TestExportPostings(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "placements.csv")
	require.NoError(t, NewCSVExporter(csvPath).ExportPostings(postings()))
	b, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "company,position,salary"))

	jsonPath := filepath.Join(dir, "placements.json")
	require.NoError(t, NewCSVExporter(jsonPath).ExportPostings(postings()))
	b, err = os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "["))

	err = NewCSVExporter(filepath.Join(dir, "missing", "x.csv")).ExportPostings(nil)
	assert.ErrorContains(t, err, "create export file")
}

func TestExportStatistics(t *testing.T) {
	dir := t.TempDir()
	ce := NewCSVExporter(filepath.Join(dir, "placements.csv"))

	name, err := ce.ExportStatistics(postings(), time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "placements_statistics_20260115_093000.csv"), name)

	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"postings", "3"})
	assert.Contains(t, rows, []string{"Infosys", "2"})
}

func TestPrintStatistics(t *testing.T) {
	var buf bytes.Buffer
	PrintStatistics(&buf, nil)
	assert.Equal(t, "No placement postings found\n", buf.String())

	buf.Reset()
	PrintStatistics(&buf, postings())
	assert.Contains(t, buf.String(), "3 postings from 2 companies")
	assert.Contains(t, buf.String(), "Infosys: 2")
}
