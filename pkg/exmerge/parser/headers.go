package parser

import (
	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/xuri/excelize/v2"
)

// HeaderDetectionParams holds thresholds for the header heuristic.
type HeaderDetectionParams struct {
	// CoverageMin is the share of the data width the header row must fill.
	CoverageMin float64
	// TextRatioMin is the share of header cells that must be non-numeric.
	TextRatioMin float64
}

// DefaultHeaderParams returns default header detection parameters.
func DefaultHeaderParams() HeaderDetectionParams {
	return HeaderDetectionParams{
		CoverageMin:  0.5,
		TextRatioMin: 0.8,
	}
}

// DetectHeaderRows returns the number of header rows of a sheet. A frozen
// pane wins; otherwise the first used row counts as the header when it is
// mostly text and at least one row follows it.
func DetectHeaderRows(f *excelize.File, sheetName string) (int, error) {
	panes, err := f.GetPanes(sheetName)
	if err == nil && panes.Freeze && panes.YSplit > 0 {
		return panes.YSplit, nil
	}

	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, err
	}
	return guessHeaderRows(rows, DefaultHeaderParams()), nil
}

func guessHeaderRows(rows [][]string, params HeaderDetectionParams) int {
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 || maxRow == minRow {
		return 0
	}

	width := maxCol - minCol + 1
	filled := countNonEmptyCells(rows, minRow, minRow, minCol, maxCol)
	if float64(filled)/float64(width) < params.CoverageMin {
		return 0
	}

	text := 0
	for _, cell := range rows[minRow] {
		if cell == "" {
			continue
		}
		if v := parseValue(cell); v.Scalar.Kind == models.KindString {
			text++
		}
	}
	if float64(text)/float64(filled) < params.TextRatioMin {
		return 0
	}
	return minRow + 1
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells within bounds.
func countNonEmptyCells(rows [][]string, minRow, maxRow, minCol, maxCol int) int {
	count := 0
	for rowIdx := minRow; rowIdx <= maxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}
