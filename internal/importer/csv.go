package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// PreviewRows is how many data rows the preview exposes.
const PreviewRows = 10

// ParsedCSV holds a parsed upload: the header row and all data rows as raw
// string cells. Rows may be ragged; missing cells read as empty.
type ParsedCSV struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ParseCSV reads an uploaded CSV. Quoted fields containing the delimiter
// and escaped quotes ("" inside a quoted field) are handled; blank lines
// are skipped. An upload without a header row and at least one data row is
// an error, surfaced before any write happens.
func ParseCSV(r io.Reader) (*ParsedCSV, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	var clean [][]string
	for _, rec := range records {
		if isBlankRow(rec) {
			continue
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		clean = append(clean, rec)
	}

	if len(clean) == 0 {
		return nil, errors.New("no rows or headers found in the CSV file")
	}
	if len(clean[0]) == 0 {
		return nil, errors.New("the CSV file has no header columns")
	}
	if len(clean) < 2 {
		return nil, errors.New("the CSV file does not have any data rows")
	}

	return &ParsedCSV{Headers: clean[0], Rows: clean[1:]}, nil
}

// Preview returns up to n leading data rows. The full row set is kept on
// ParsedCSV for the actual import.
func (p *ParsedCSV) Preview(n int) [][]string {
	if n > len(p.Rows) {
		n = len(p.Rows)
	}
	return p.Rows[:n]
}

// Cell returns the trimmed value of the column named header in row, or ""
// when the header is unknown or the row is short.
func (p *ParsedCSV) Cell(row []string, header string) string {
	for i, h := range p.Headers {
		if h == header {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
	}
	return ""
}

func isBlankRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
