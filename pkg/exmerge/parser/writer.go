package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
	"github.com/xuri/excelize/v2"
)

// ApplyWriteSet performs the structural edits and cell writes of ws on a
// sheet, in order: column deletes, column inserts, row deletes, row
// inserts, then cell writes.
func ApplyWriteSet(f *excelize.File, sheetName string, ws models.WriteSet) error {
	for _, col := range ws.ColumnDeletes {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.RemoveCol(sheetName, name); err != nil {
			return fmt.Errorf("remove column %s: %w", name, err)
		}
	}
	for _, col := range ws.ColumnInserts {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := f.InsertCols(sheetName, name, 1); err != nil {
			return fmt.Errorf("insert column %s: %w", name, err)
		}
	}
	for _, row := range ws.RowDeletes {
		if err := f.RemoveRow(sheetName, row); err != nil {
			return fmt.Errorf("remove row %d: %w", row, err)
		}
	}
	for _, row := range ws.RowInserts {
		if err := f.InsertRows(sheetName, row, 1); err != nil {
			return fmt.Errorf("insert row %d: %w", row, err)
		}
	}

	for _, w := range ws.Writes {
		cell, err := excelize.CoordinatesToCellName(w.Col, w.Row)
		if err != nil {
			return err
		}
		if err := writeCell(f, sheetName, cell, w.Value); err != nil {
			return fmt.Errorf("write %s: %w", cell, err)
		}
	}
	return nil
}

// writeCell stores a scalar, replacing any formula the cell held.
func writeCell(f *excelize.File, sheetName, cell string, v models.Scalar) error {
	if formula, err := f.GetCellFormula(sheetName, cell); err == nil && formula != "" {
		if err := f.SetCellFormula(sheetName, cell, ""); err != nil {
			return err
		}
	}
	switch v.Kind {
	case models.KindNumber:
		return f.SetCellValue(sheetName, cell, v.Num)
	case models.KindString:
		if t, ok := normalize.ParseDate(v.Str); ok {
			return f.SetCellValue(sheetName, cell, t)
		}
		return f.SetCellValue(sheetName, cell, v.Str)
	default:
		return f.SetCellValue(sheetName, cell, nil)
	}
}

// PostProcessFormulas rewrites every formula of a sheet in canonical form
// (no leading '=', no surrounding blanks) so formulas shifted by
// structural edits are stored as plain cell formulas.
func PostProcessFormulas(f *excelize.File, sheetName string) error {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for r := 1; r <= len(rows); r++ {
		for c := 1; c <= width; c++ {
			cell, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return err
			}
			formula, err := f.GetCellFormula(sheetName, cell)
			if err != nil || formula == "" {
				continue
			}
			canonical := strings.TrimPrefix(strings.TrimSpace(formula), "=")
			if err := f.SetCellFormula(sheetName, cell, canonical); err != nil {
				return fmt.Errorf("formula %s: %w", cell, err)
			}
		}
	}
	return nil
}
