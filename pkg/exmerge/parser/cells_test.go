package parser

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/xuri/excelize/v2"
)

// saveAndOpen writes f to a temp file and opens it again so tests read
// what a user's workbook would contain.
func saveAndOpen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.xlsx")
	if err := f.SaveAs(tmpFile); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}
	f2, err := excelize.OpenFile(tmpFile)
	if err != nil {
		t.Fatalf("Failed to open test file: %v", err)
	}
	t.Cleanup(func() { f2.Close() })
	return f2
}

func TestReadGrid(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Header1")
	f.SetCellValue(sheetName, "B1", "Header2")
	f.SetCellValue(sheetName, "C1", "When")
	f.SetCellValue(sheetName, "A2", 100)
	f.SetCellValue(sheetName, "B2", 200.5)
	f.SetCellValue(sheetName, "C2", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	f.SetCellValue(sheetName, "A3", "007")
	f.SetCellValue(sheetName, "B3", true)
	f.SetCellRichText(sheetName, "C3", []excelize.RichTextRun{{Text: "foo"}, {Text: "bar"}})

	grid, err := ReadGrid(saveAndOpen(t, f), sheetName)
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}

	tests := []struct {
		cell     string
		row, col int
		expected models.Scalar
	}{
		{"A1", 1, 1, models.String("Header1")},
		{"A2", 2, 1, models.Number(100)},
		{"B2", 2, 2, models.Number(200.5)},
		{"C2", 2, 3, models.String("2024-03-01")},
		{"A3", 3, 1, models.String("007")},
		{"B3", 3, 2, models.String("TRUE")},
		{"C3", 3, 3, models.String("foobar")},
		{"D9", 9, 4, models.Null()},
	}
	for _, tt := range tests {
		if got := grid.At(tt.row, tt.col); got != tt.expected {
			t.Errorf("%s: expected %#v, got %#v", tt.cell, tt.expected, got)
		}
	}
}

func TestReadGridFormulaWithoutCachedValue(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", 1)
	f.SetCellFormula("Sheet1", "B1", "A1*2")

	grid, err := ReadGrid(saveAndOpen(t, f), "Sheet1")
	if err != nil {
		t.Fatalf("ReadGrid failed: %v", err)
	}
	if got := grid.At(1, 2); !got.IsNull() {
		t.Errorf("Expected uncalculated formula to read as null, got %#v", got)
	}
}

func TestReadGridMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := ReadGrid(f, "Nope"); err == nil {
		t.Error("Expected an error for a missing sheet")
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Scalar
	}{
		{"123", models.Number(123)},
		{"123.45", models.Number(123.45)},
		{"-100", models.Number(-100)},
		{"hello", models.String("hello")},
		{"NaN", models.String("NaN")},
		{"", models.Null()},
	}

	for _, tt := range tests {
		result := parseValue(tt.input)
		if result.Scalar != tt.expected {
			t.Errorf("parseValue(%q) = %#v, expected %#v", tt.input, result.Scalar, tt.expected)
		}
	}
}

func TestIsDateFormat(t *testing.T) {
	custom := func(s string) *string { return &s }
	tests := []struct {
		id       int
		custom   *string
		expected bool
	}{
		{14, nil, true},
		{22, nil, true},
		{2, nil, false},
		{0, custom("yyyy/mm/dd"), true},
		{0, custom("#,##0.00"), false},
		{0, custom(`0.0 "days"`), false},
		{0, custom("[$-409]h:mm AM/PM"), true},
	}
	for _, tt := range tests {
		if got := isDateFormat(tt.id, tt.custom); got != tt.expected {
			t.Errorf("isDateFormat(%d, %v) = %v, expected %v", tt.id, tt.custom, got, tt.expected)
		}
	}
}
