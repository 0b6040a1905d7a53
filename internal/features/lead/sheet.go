package lead

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// columnSetters maps a normalised header to the input field it fills.
var columnSetters = map[string]func(in *CreateLeadInput, v string){
	"name":           func(in *CreateLeadInput, v string) { in.Name = v },
	"fullname":       func(in *CreateLeadInput, v string) { in.Name = v },
	"email":          func(in *CreateLeadInput, v string) { in.Email = v },
	"phone":          func(in *CreateLeadInput, v string) { in.Phone = v },
	"phonenumber":    func(in *CreateLeadInput, v string) { in.Phone = v },
	"date":           func(in *CreateLeadInput, v string) { in.Date = v },
	"status":         func(in *CreateLeadInput, v string) { in.Status = v },
	"property":       func(in *CreateLeadInput, v string) { in.Property = v },
	"location":       func(in *CreateLeadInput, v string) { in.Location = v },
	"notes":          func(in *CreateLeadInput, v string) { in.Notes = v },
	"assignedto":     func(in *CreateLeadInput, v string) { in.AssignedTo = v },
	"leadstatus":     func(in *CreateLeadInput, v string) { in.LeadStatus = strings.ToLower(v) },
	"leadtype":       func(in *CreateLeadInput, v string) { in.LeadType = strings.ToLower(v) },
	"leadsource":     func(in *CreateLeadInput, v string) { in.LeadSource = strings.ToLower(v) },
	"leadresponse":   func(in *CreateLeadInput, v string) { in.LeadResponse = v },
	"clienttype":     func(in *CreateLeadInput, v string) { in.ClientType = v },
	"leadconversion": func(in *CreateLeadInput, v string) { in.LeadConversion = v },
	"language":       func(in *CreateLeadInput, v string) { in.Language = v },
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// ParseSheet reads leads from a .csv or .xlsx upload. The first row holds the
// headers; unknown columns are ignored and blank rows skipped.
func ParseSheet(r io.Reader, filename string) ([]CreateLeadInput, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		rows, err = readCSV(r)
	case ".xlsx":
		rows, err = readExcel(r)
	default:
		return nil, fmt.Errorf("unsupported file format")
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	setters := make([]func(*CreateLeadInput, string), len(rows[0]))
	known := 0
	for i, h := range rows[0] {
		if set, ok := columnSetters[normalizeHeader(h)]; ok {
			setters[i] = set
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("no recognised columns in header row")
	}

	inputs := make([]CreateLeadInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var in CreateLeadInput
		blank := true
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			if i >= len(setters) || setters[i] == nil || cell == "" {
				continue
			}
			setters[i](&in, cell)
			blank = false
		}
		if !blank {
			inputs = append(inputs, in)
		}
	}
	return inputs, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}
