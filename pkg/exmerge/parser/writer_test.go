package parser

import (
	"testing"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/xuri/excelize/v2"
)

func cellValue(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell)
	if err != nil {
		t.Fatalf("GetCellValue(%s) failed: %v", cell, err)
	}
	return v
}

func TestApplyWriteSetColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetSheetRow(sheet, "A1", &[]interface{}{"A", "B", "C"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{1, 2, 3})

	ws := models.WriteSet{
		ColumnDeletes: []int{2},
		ColumnInserts: []int{3},
		Writes: []models.CellWrite{
			{Row: 1, Col: 3, Value: models.String("D")},
			{Row: 2, Col: 2, Value: models.String("x")},
			{Row: 2, Col: 3, Value: models.Number(4)},
		},
	}
	if err := ApplyWriteSet(f, sheet, ws); err != nil {
		t.Fatalf("ApplyWriteSet failed: %v", err)
	}

	expected := map[string]string{
		"A1": "A", "B1": "C", "C1": "D",
		"A2": "1", "B2": "x", "C2": "4",
		"D1": "",
	}
	for cell, want := range expected {
		if got := cellValue(t, f, sheet, cell); got != want {
			t.Errorf("%s: expected %q, got %q", cell, want, got)
		}
	}
}

func TestApplyWriteSetRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	f.SetCellValue(sheet, "A1", "name")
	f.SetCellValue(sheet, "A2", "a")
	f.SetCellValue(sheet, "A3", "b")

	ws := models.WriteSet{
		RowDeletes: []int{2},
		RowInserts: []int{2},
		Writes: []models.CellWrite{
			{Row: 2, Col: 1, Value: models.String("new")},
			{Row: 3, Col: 1, Value: models.Null()},
		},
	}
	if err := ApplyWriteSet(f, sheet, ws); err != nil {
		t.Fatalf("ApplyWriteSet failed: %v", err)
	}
	if got := cellValue(t, f, sheet, "A2"); got != "new" {
		t.Errorf("Expected inserted row at A2, got %q", got)
	}
	if got := cellValue(t, f, sheet, "A3"); got != "" {
		t.Errorf("Expected A3 cleared, got %q", got)
	}
}

func TestWriteCellReplacesFormula(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", 2)
	f.SetCellFormula("Sheet1", "B1", "A1*2")
	if err := writeCell(f, "Sheet1", "B1", models.Number(5)); err != nil {
		t.Fatalf("writeCell failed: %v", err)
	}
	if formula, _ := f.GetCellFormula("Sheet1", "B1"); formula != "" {
		t.Errorf("Expected formula to be removed, got %q", formula)
	}
	if got := cellValue(t, f, "Sheet1", "B1"); got != "5" {
		t.Errorf("Expected 5, got %q", got)
	}
}

func TestPostProcessFormulas(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetCellValue("Sheet1", "A1", 2)
	f.SetCellValue("Sheet1", "A2", 3)
	f.SetCellFormula("Sheet1", "B2", "= SUM(A1:A2)")
	if err := PostProcessFormulas(f, "Sheet1"); err != nil {
		t.Fatalf("PostProcessFormulas failed: %v", err)
	}
	if formula, _ := f.GetCellFormula("Sheet1", "B2"); formula != "SUM(A1:A2)" {
		t.Errorf("Expected canonical formula, got %q", formula)
	}
}
