package importer

import (
	"strings"
	"testing"
)

func TestParseCSV(t *testing.T) {
	in := "Asset Tag,Model,Location\nCB-001,Chromebook,\"Lab, West Wing\"\nCB-002,\"14\"\" Laptop\",Office\n"
	parsed, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(parsed.Headers))
	}
	if len(parsed.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(parsed.Rows))
	}
	if got := parsed.Cell(parsed.Rows[0], "Location"); got != "Lab, West Wing" {
		t.Errorf("quoted delimiter cell = %q", got)
	}
	if got := parsed.Cell(parsed.Rows[1], "Model"); got != `14" Laptop` {
		t.Errorf("escaped quote cell = %q", got)
	}
}

func TestParseCSVSkipsBlankRows(t *testing.T) {
	in := "Tag,Model\n\nCB-001,X\n,,\nCB-002,Y\n"
	parsed, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Rows) != 2 {
		t.Fatalf("expected 2 rows after skipping blanks, got %d", len(parsed.Rows))
	}
}

func TestParseCSVTrimsCells(t *testing.T) {
	in := "Tag , Model\n CB-001 ,  X \n"
	parsed, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Headers[0] != "Tag" {
		t.Errorf("header = %q, want %q", parsed.Headers[0], "Tag")
	}
	if parsed.Rows[0][0] != "CB-001" {
		t.Errorf("cell = %q, want %q", parsed.Rows[0][0], "CB-001")
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := ParseCSV(strings.NewReader("\n\n")); err == nil {
		t.Fatal("expected error for blank-only input")
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("Tag,Model\n"))
	if err == nil {
		t.Fatal("expected error for header-only upload")
	}
	if !strings.Contains(err.Error(), "data rows") {
		t.Errorf("error = %v", err)
	}
}

func TestPreview(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Tag\n")
	for i := 0; i < 25; i++ {
		sb.WriteString("CB-001\n")
	}
	parsed, err := ParseCSV(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(parsed.Preview(PreviewRows)); got != PreviewRows {
		t.Errorf("preview length = %d, want %d", got, PreviewRows)
	}
	if got := len(parsed.Preview(100)); got != 25 {
		t.Errorf("oversized preview length = %d, want 25", got)
	}
	if len(parsed.Rows) != 25 {
		t.Errorf("preview must not shrink the row set: %d", len(parsed.Rows))
	}
}

func TestCellRaggedRow(t *testing.T) {
	parsed := &ParsedCSV{Headers: []string{"A", "B", "C"}, Rows: [][]string{{"1", "2"}}}
	if got := parsed.Cell(parsed.Rows[0], "C"); got != "" {
		t.Errorf("short row cell = %q, want empty", got)
	}
	if got := parsed.Cell(parsed.Rows[0], "Missing"); got != "" {
		t.Errorf("unknown header cell = %q, want empty", got)
	}
}
