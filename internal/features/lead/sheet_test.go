package lead

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseSheet_CSV(t *testing.T) {
	data := "Full Name,Email,Lead Status,Ignored\nJane,j@x.com,HOT,zzz\n,,,\nBob,,cold,\n"

	rows, err := ParseSheet(strings.NewReader(data), "leads.csv")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Name != "Jane" || rows[0].Email != "j@x.com" || rows[0].LeadStatus != "hot" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[1].Name != "Bob" || rows[1].LeadStatus != "cold" {
		t.Errorf("Unexpected second row: %+v", rows[1])
	}
}

func TestParseSheet_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"name", "phone"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"Jane", "555"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}

	rows, err := ParseSheet(&buf, "leads.xlsx")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Jane" || rows[0].Phone != "555" {
		t.Errorf("Unexpected rows: %+v", rows)
	}
}

func TestParseSheet_Rejects(t *testing.T) {
	if _, err := ParseSheet(strings.NewReader("x"), "leads.pdf"); err == nil {
		t.Error("Expected unsupported format error")
	}
	if _, err := ParseSheet(strings.NewReader("foo,bar\n1,2\n"), "leads.csv"); err == nil {
		t.Error("Expected error for unknown headers")
	}
}
