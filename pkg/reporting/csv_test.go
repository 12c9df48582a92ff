package reporting

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"
)

func parseCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(string(data)))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse CSV: %v", err)
	}
	return records
}

// sectionRows returns the rows under a "# HEADING" marker, header row first.
func sectionRows(records [][]string, heading string) [][]string {
	for i, rec := range records {
		if len(rec) == 1 && rec[0] == "# "+heading {
			var rows [][]string
			for _, r := range records[i+1:] {
				// the writer's blank separator rows are skipped by the reader
				if len(r) == 1 && (r[0] == "" || strings.HasPrefix(r[0], "# ")) {
					break
				}
				rows = append(rows, r)
			}
			return rows
		}
	}
	return nil
}

func TestCSVGenerator_Sales(t *testing.T) {
	data, err := NewCSVGenerator().Generate(KindSales, sampleInput(), testDate, DefaultBranding())
	if err != nil {
		t.Fatalf("CSV generation failed: %v", err)
	}
	records := parseCSV(t, data)

	if records[0][0] != "# "+DefaultBusinessName {
		t.Errorf("Missing report header, got %v", records[0])
	}
	if records[1][1] != "Sales Report" {
		t.Errorf("Missing title, got %v", records[1])
	}

	summary := sectionRows(records, "SUMMARY")
	if len(summary) != 5 {
		t.Fatalf("summary rows = %v", summary)
	}
	if summary[3][0] != "Outstanding Amount" || summary[3][1] != "150000.00" {
		t.Errorf("outstanding row = %v", summary[3])
	}

	if rows := sectionRows(records, "DAILY SALES"); len(rows) != 6 {
		t.Errorf("daily rows = %d, want header plus 5", len(rows))
	}
	customers := sectionRows(records, "CUSTOMERS")
	if len(customers) != 3 {
		t.Fatalf("customer rows = %v", customers)
	}
	if customers[1][7] != "2026-10-17" {
		t.Errorf("last order = %q", customers[1][7])
	}
	if customers[2][7] != "" {
		t.Errorf("missing last order rendered as %q", customers[2][7])
	}
	items := sectionRows(records, "CUSTOMER PRODUCTS")
	if len(items) != 2 || items[1][1] != "TMT Bar 12mm" {
		t.Errorf("customer product rows = %v", items)
	}
	if sectionRows(records, "STAFF") != nil {
		t.Error("sales CSV should not carry analytics sections")
	}
}

func TestCSVGenerator_Full(t *testing.T) {
	data, err := NewCSVGenerator().Generate(KindFull, sampleInput(), testDate, DefaultBranding())
	if err != nil {
		t.Fatalf("CSV generation failed: %v", err)
	}
	records := parseCSV(t, data)

	for _, heading := range []string{"SUMMARY", "DAILY SALES", "TOP PRODUCTS", "CATEGORIES", "STOCK MOVEMENTS", "STAFF"} {
		if sectionRows(records, heading) == nil {
			t.Errorf("missing section %s", heading)
		}
	}
	if sectionRows(records, "CUSTOMERS") != nil {
		t.Error("full CSV should not carry customers")
	}
	stock := sectionRows(records, "STOCK MOVEMENTS")
	if stock[1][0] != "Stock In" || stock[1][2] != "900" {
		t.Errorf("stock row = %v", stock[1])
	}
}

func TestCSVGenerator_EmptyAndInvalid(t *testing.T) {
	gen := NewCSVGenerator()

	data, err := gen.Generate(KindFull, &ReportInput{}, testDate, Branding{})
	if err != nil {
		t.Fatalf("empty input: %v", err)
	}
	records := parseCSV(t, data)
	if sectionRows(records, "SUMMARY") == nil {
		t.Error("summary missing for empty input")
	}
	if sectionRows(records, "DAILY SALES") != nil {
		t.Error("daily section rendered without data")
	}

	if _, err := gen.Generate(KindSales, nil, testDate, Branding{}); !errors.Is(err, ErrNilInput) {
		t.Errorf("nil input: err = %v", err)
	}
	if _, err := gen.Generate("weekly", &ReportInput{}, testDate, Branding{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("unknown kind: err = %v", err)
	}
}
