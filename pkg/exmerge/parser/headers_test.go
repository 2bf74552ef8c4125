package parser

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectHeaderRowsFrozenPane(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", 1)
	f.SetCellValue("Sheet1", "A2", 2)
	f.SetCellValue("Sheet1", "A3", 3)
	err := f.SetPanes("Sheet1", &excelize.Panes{
		Freeze:      true,
		YSplit:      2,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	})
	if err != nil {
		t.Fatalf("SetPanes failed: %v", err)
	}

	n, err := DetectHeaderRows(saveAndOpen(t, f), "Sheet1")
	if err != nil {
		t.Fatalf("DetectHeaderRows failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 frozen header rows, got %d", n)
	}
}

func TestGuessHeaderRows(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected int
	}{
		{"empty", nil, 0},
		{"text over numbers", [][]string{{"id", "qty"}, {"1", "2"}}, 1},
		{"title row offset", [][]string{{}, {"", "id", "qty"}, {"", "1", "2"}}, 2},
		{"numeric first row", [][]string{{"1", "2"}, {"3", "4"}}, 0},
		{"single row", [][]string{{"id", "qty"}}, 0},
		{"sparse first row", [][]string{{"id", "", "", ""}, {"1", "2", "3", "4"}}, 0},
	}
	for _, tt := range tests {
		if got := guessHeaderRows(tt.rows, DefaultHeaderParams()); got != tt.expected {
			t.Errorf("%s: guessHeaderRows() = %d, expected %d", tt.name, got, tt.expected)
		}
	}
}

func TestCacheLoadsOnce(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "id")
	f.SetCellValue("Sheet1", "A2", 1)
	f.NewSheet("Second")

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save test file: %v", err)
	}

	c := NewCache()
	first, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	second, _ := c.Load(path)
	if first != second {
		t.Error("Expected the cached workbook to be reused")
	}
	if got := first.Names(); len(got) != 2 || got[0] != "Sheet1" || got[1] != "Second" {
		t.Errorf("Unexpected sheet names %v", got)
	}
	if s, ok := first.Lookup("Sheet1"); !ok || s.HeaderRows != 1 {
		t.Errorf("Expected Sheet1 with 1 header row, got %+v (%v)", s, ok)
	}

	if _, err := c.Load(filepath.Join(t.TempDir(), "missing.xlsx")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}
