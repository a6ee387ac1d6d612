package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/acavemancodes/Snistplacements/internal/types"
)

// Header is the column order of the postings CSV.
var Header = []string{
	"company",
	"position",
	"salary",
	"last_date",
	"application_link",
	"display_text",
	"company_confidence",
	"salary_confidence",
	"last_date_confidence",
	"message_id",
	"subject",
}

// CSV/JSON 导出器
type CSVExporter struct {
	filename string
}

func NewCSVExporter(filename string) *CSVExporter {
	return &CSVExporter{
		filename: filename,
	}
}

// Filename is the export target.
func (ce *CSVExporter) Filename() string { return ce.filename }

// ExportPostings 导出到文件. 扩展名为 .json 时写 JSON, 否则写 CSV
func (ce *CSVExporter) ExportPostings(postings []types.JobPosting) error {
	file, err := os.Create(ce.filename)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(ce.filename), ".json") {
		err = WriteJSON(file, postings)
	} else {
		err = WriteCSV(file, postings)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// WriteCSV writes the header and one row per posting.
func WriteCSV(w io.Writer, postings []types.JobPosting) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write CSV headers: %w", err)
	}

	for _, p := range postings {
		record := []string{
			p.Company,
			p.Title(),
			p.Salary,
			p.LastDate,
			p.Link(),
			p.DisplayText,
			strconv.Itoa(p.Confidence.Company),
			strconv.Itoa(p.Confidence.Salary),
			strconv.Itoa(p.Confidence.LastDate),
			p.MessageID,
			p.Subject,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}

// WriteJSON writes the postings as an indented JSON array.
func WriteJSON(w io.Writer, postings []types.JobPosting) error {
	if postings == nil {
		postings = []types.JobPosting{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(postings); err != nil {
		return fmt.Errorf("write JSON: %w", err)
	}
	return nil
}

// CompanyCount is one row of the per-company tally.
type CompanyCount struct {
	Company string `json:"company"`
	Count   int    `json:"count"`
}

// Statistics summarizes a set of postings.
type Statistics struct {
	Total        int            `json:"total"`
	WithSalary   int            `json:"withSalary"`
	WithLastDate int            `json:"withLastDate"`
	WithLink     int            `json:"withLink"`
	WithPosition int            `json:"withPosition"`
	Companies    int            `json:"companies"`
	TopCompanies []CompanyCount `json:"topCompanies"`
}

// topCompanies 统计前 N 名
const topCompanies = 10

// Summarize counts field coverage and the most frequent companies.
// Ties are broken by name.
func Summarize(postings []types.JobPosting) Statistics {
	st := Statistics{Total: len(postings)}
	companyCount := make(map[string]int)

	for _, p := range postings {
		if p.HasSalary() {
			st.WithSalary++
		}
		if p.HasLastDate() {
			st.WithLastDate++
		}
		if p.Link() != "" {
			st.WithLink++
		}
		if p.Title() != "" {
			st.WithPosition++
		}
		if p.Company != "" {
			companyCount[p.Company]++
		}
	}

	companies := make([]CompanyCount, 0, len(companyCount))
	for name, n := range companyCount {
		companies = append(companies, CompanyCount{name, n})
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Count != companies[j].Count {
			return companies[i].Count > companies[j].Count
		}
		return companies[i].Company < companies[j].Company
	})

	st.Companies = len(companies)
	if len(companies) > topCompanies {
		companies = companies[:topCompanies]
	}
	st.TopCompanies = companies
	return st
}

// ExportStatistics 导出统计信息到导出文件旁边的 CSV, 返回文件名
func (ce *CSVExporter) ExportStatistics(postings []types.JobPosting, now time.Time) (string, error) {
	base := strings.TrimSuffix(ce.filename, filepath.Ext(ce.filename))
	statsFile := base + "_statistics_" + now.Format("20060102_150405") + ".csv"

	file, err := os.Create(statsFile)
	if err != nil {
		return "", fmt.Errorf("create statistics file: %w", err)
	}
	defer file.Close()

	if err := WriteStatistics(file, Summarize(postings)); err != nil {
		return "", err
	}
	return statsFile, file.Close()
}

// WriteStatistics writes the coverage block, a blank row and the company
// ranking.
func WriteStatistics(w io.Writer, st Statistics) error {
	writer := csv.NewWriter(w)
	rows := [][]string{
		{"metric", "count"},
		{"postings", strconv.Itoa(st.Total)},
		{"with_salary", strconv.Itoa(st.WithSalary)},
		{"with_last_date", strconv.Itoa(st.WithLastDate)},
		{"with_link", strconv.Itoa(st.WithLink)},
		{"with_position", strconv.Itoa(st.WithPosition)},
		{"companies", strconv.Itoa(st.Companies)},
		{},
		{"company", "postings"},
	}
	for _, c := range st.TopCompanies {
		rows = append(rows, []string{c.Company, strconv.Itoa(c.Count)})
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("write statistics: %w", err)
	}
	return nil
}

// PrintStatistics 打印简要统计信息
func PrintStatistics(w io.Writer, postings []types.JobPosting) {
	if len(postings) == 0 {
		fmt.Fprintln(w, "No placement postings found")
		return
	}

	st := Summarize(postings)
	fmt.Fprintf(w, "\n=== Placement postings ===\n")
	fmt.Fprintf(w, "%d postings from %d companies\n\n", st.Total, st.Companies)
	fmt.Fprintf(w, "  with salary:    %d\n", st.WithSalary)
	fmt.Fprintf(w, "  with last date: %d\n", st.WithLastDate)
	fmt.Fprintf(w, "  with link:      %d\n", st.WithLink)
	fmt.Fprintf(w, "  with position:  %d\n", st.WithPosition)

	fmt.Fprintln(w, "\nMost frequent companies:")
	for i, c := range st.TopCompanies {
		if i >= 5 { // 只显示前5名
			break
		}
		fmt.Fprintf(w, "  %s: %d\n", c.Company, c.Count)
	}
}
