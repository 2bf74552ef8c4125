package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
	"github.com/xuri/excelize/v2"
)

// ListWorksheets returns the worksheet names of a workbook in tab order.
func ListWorksheets(f *excelize.File) []string {
	return f.GetSheetList()
}

// ReadGrid reads a sheet into a normalized grid. Row r, column c of the
// sheet is grid[r-1][c-1]; trailing empty cells may be omitted.
func ReadGrid(f *excelize.File, sheetName string) (models.Grid, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	r := &cellReader{f: f, sheet: sheetName, dates: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	grid := make(models.Grid, len(rows))
	for rowIdx, row := range rows {
		grid[rowIdx] = make([]models.Scalar, len(row))
		for colIdx, raw := range row {
			if raw == "" {
				continue
			}
			cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			if err != nil {
				return nil, err
			}
			grid[rowIdx][colIdx] = normalize.Value(r.read(cellName, raw))
		}
	}
	return grid, nil
}

type cellReader struct {
	f        *excelize.File
	sheet    string
	date1904 bool
	// dates caches whether a style index formats numbers as dates.
	dates map[int]bool
}

func (r *cellReader) read(cell, raw string) models.RawValue {
	if formula, err := r.f.GetCellFormula(r.sheet, cell); err == nil && formula != "" {
		result := normalize.Value(parseValue(raw))
		return models.RawValue{Kind: models.RawFormula, Formula: formula, Result: &result}
	}

	cellType, err := r.f.GetCellType(r.sheet, cell)
	if err != nil {
		return parseValue(raw)
	}
	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		if runs, err := r.f.GetCellRichText(r.sheet, cell); err == nil && len(runs) > 1 {
			texts := make([]string, len(runs))
			for i, run := range runs {
				texts[i] = run.Text
			}
			return models.RawValue{Kind: models.RawRichText, Runs: texts}
		}
		return models.RawValue{Kind: models.RawScalar, Scalar: models.String(raw)}
	case excelize.CellTypeBool:
		return models.RawValue{Kind: models.RawOther, Other: raw == "1" || strings.EqualFold(raw, "true")}
	case excelize.CellTypeError:
		return models.RawValue{Kind: models.RawScalar, Scalar: models.String(raw)}
	case excelize.CellTypeDate:
		return r.date(raw)
	}

	v := parseValue(raw)
	if v.Scalar.Kind == models.KindNumber && r.isDateStyle(cell) {
		return r.date(raw)
	}
	return v
}

func (r *cellReader) date(raw string) models.RawValue {
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return models.RawValue{Kind: models.RawScalar, Scalar: models.String(raw)}
	}
	t, err := excelize.ExcelDateToTime(serial, r.date1904)
	if err != nil {
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(serial)}
	}
	return models.RawValue{Kind: models.RawDate, Time: t}
}

func (r *cellReader) isDateStyle(cell string) bool {
	styleID, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}
	if isDate, ok := r.dates[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateFormat(style.NumFmt, style.CustomNumFmt)
	}
	r.dates[styleID] = isDate
	return isDate
}

// isDateFormat reports whether a built-in number format id or a custom
// format code renders a serial number as a date or time.
func isDateFormat(id int, custom *string) bool {
	if custom != nil && *custom != "" {
		return isDateFormatCode(*custom)
	}
	switch {
	case id >= 14 && id <= 22, id >= 45 && id <= 47, id >= 27 && id <= 36, id >= 50 && id <= 58:
		return true
	}
	return false
}

func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for _, c := range strings.ToLower(code) {
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(c)
		}
	}
	return strings.ContainsAny(b.String(), "ydhs")
}

// parseValue interprets a raw cell string as a number when it parses as
// one, or as text otherwise.
func parseValue(s string) models.RawValue {
	if s == "" {
		return models.RawValue{Kind: models.RawScalar}
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(float64(i))}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return models.RawValue{Kind: models.RawScalar, Scalar: models.Number(f)}
	}
	return models.RawValue{Kind: models.RawScalar, Scalar: models.String(s)}
}
