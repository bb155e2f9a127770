package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"outreach-stack/internal/models"
)

var requiredColumns = []string{"company", "website", "recipient_email", "process"}

// LoadCompanies reads the input spreadsheet and returns one CompanyRecord per
// data row, in file order. Field validation is left to the pipeline so that
// every row still yields exactly one result.
func LoadCompanies(path string) ([]models.CompanyRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open companies file %s: %w", path, err)
	}
	defer f.Close()

	return readCompanies(f)
}

func readCompanies(r io.Reader) ([]models.CompanyRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var records []models.CompanyRecord
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		records = append(records, models.CompanyRecord{
			CompanyName:    field(rec, "company"),
			Website:        field(rec, "website"),
			RecipientEmail: field(rec, "recipient_email"),
			ContactPerson:  field(rec, "contact person"),
			ProcessFlag:    field(rec, "process"),
		})
	}
	return records, nil
}

// ResultsHeader returns the stable column set of the output spreadsheet.
func ResultsHeader() []string {
	return []string{
		"saved_at",
		"company",
		"website",
		"recipient_email",
		"contact_person",
		"status",
		"reason",
		"main_business",
		"cooperation_points",
		"subject",
		"draft_id",
	}
}

// WriteResults appends one row per ProcessingResult to the output
// spreadsheet, creating it with a header when it does not exist yet.
func WriteResults(path string, results []models.ProcessingResult) error {
	if len(results) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open results file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(ResultsHeader()); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, res := range results {
		if err := w.Write(resultRow(res)); err != nil {
			return fmt.Errorf("write row for %s: %w", res.Record.CompanyName, err)
		}
	}

	w.Flush()
	return w.Error()
}

func resultRow(res models.ProcessingResult) []string {
	var mainBusiness, points, subject string
	if res.Insight != nil {
		mainBusiness = res.Insight.MainBusiness
		points = strings.Join(res.Insight.CooperationPoints, "; ")
	}
	if res.Draft != nil {
		subject = res.Draft.Subject
	}
	return []string{
		res.Finished.Format(time.DateTime),
		res.Record.CompanyName,
		res.Record.Website,
		res.Record.RecipientEmail,
		res.Record.ContactPerson,
		string(res.Status),
		res.Reason,
		mainBusiness,
		points,
		subject,
		res.DraftID,
	}
}
