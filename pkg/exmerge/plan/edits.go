// Package plan records structural row and column edits against a sheet
// diff and resolves them, together with the merged cell values, into the
// ordered physical operations that produce the merged worksheet.
package plan

import (
	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

// EditSet holds pending edits keyed by 1-based aligned row position and
// aligned column. The zero value is an empty set.
type EditSet struct {
	Rows    map[int]models.RowEditOp    `json:"rows,omitempty"`
	Columns map[int]models.ColumnEditOp `json:"columns,omitempty"`
}

// Clone returns a deep copy.
func (e EditSet) Clone() EditSet {
	out := EditSet{
		Rows:    make(map[int]models.RowEditOp, len(e.Rows)),
		Columns: make(map[int]models.ColumnEditOp, len(e.Columns)),
	}
	for k, op := range e.Rows {
		op.Values = append([]models.Scalar(nil), op.Values...)
		out.Rows[k] = op
	}
	for k, op := range e.Columns {
		op.Values = append([]models.Scalar(nil), op.Values...)
		out.Columns[k] = op
	}
	return out
}

// Len returns the number of pending edits.
func (e EditSet) Len() int { return len(e.Rows) + len(e.Columns) }

// PlanRowEdit validates and records a row edit for the aligned row at
// position aligned (visual row - header rows). Only rows present in ours
// can be deleted and only theirs-only rows can be inserted; values
// defaults to the theirs row. The returned set is a new copy; ok is false
// when the request was not valid and edits is returned unchanged.
func PlanRowEdit(d *models.SheetDiff, edits EditSet, action models.EditAction, aligned int, values []models.Scalar) (EditSet, bool) {
	if d == nil || aligned < 1 || aligned > len(d.Aligned) {
		return edits, false
	}
	row := d.Aligned[aligned-1]

	op := models.RowEditOp{Action: action, Aligned: aligned}
	switch action {
	case models.ActionDelete:
		if row.Ours == nil {
			return edits, false
		}
		op.Target = row.Ours.Physical
	case models.ActionInsert:
		if row.Ours != nil || row.Theirs == nil {
			return edits, false
		}
		op.Target = d.HeaderRows + 1
		for i := aligned - 2; i >= 0; i-- {
			if prev := d.Aligned[i].Ours; prev != nil {
				op.Target = prev.Physical + 1
				break
			}
		}
		if values == nil {
			values = row.Theirs.Values
		}
		op.Values = append([]models.Scalar(nil), values...)
	default:
		return edits, false
	}

	out := edits.Clone()
	out.Rows[aligned] = op
	return out, true
}

// PlanColumnEdit validates and records a column edit for an aligned
// column, with the same rules as PlanRowEdit. values is indexed by visual
// row - 1 and defaults to the theirs column, header rows included.
func PlanColumnEdit(d *models.SheetDiff, edits EditSet, action models.EditAction, aligned int, values []models.Scalar) (EditSet, bool) {
	if d == nil || aligned < 1 || aligned > len(d.Columns) {
		return edits, false
	}
	col := d.Columns[aligned-1]

	op := models.ColumnEditOp{Action: action, Aligned: aligned}
	switch action {
	case models.ActionDelete:
		if col.Ours == 0 {
			return edits, false
		}
		op.Target = col.Ours
	case models.ActionInsert:
		if col.Ours != 0 || col.Theirs == 0 {
			return edits, false
		}
		op.Target = 1
		for i := aligned - 2; i >= 0; i-- {
			if prev := d.Columns[i].Ours; prev != 0 {
				op.Target = prev + 1
				break
			}
		}
		if values == nil {
			values = theirsColumn(d, aligned)
		}
		op.Values = append([]models.Scalar(nil), values...)
	default:
		return edits, false
	}

	out := edits.Clone()
	out.Columns[aligned] = op
	return out, true
}

// Unplan removes any pending edit for an aligned row (rows) or aligned
// column (!rows).
func Unplan(edits EditSet, rows bool, aligned int) EditSet {
	out := edits.Clone()
	if rows {
		delete(out.Rows, aligned)
	} else {
		delete(out.Columns, aligned)
	}
	return out
}

func theirsColumn(d *models.SheetDiff, aligned int) []models.Scalar {
	values := make([]models.Scalar, d.HeaderRows+len(d.Aligned))
	for hr := 0; hr < d.HeaderRows && hr < len(d.Headers.Theirs); hr++ {
		if h := d.Headers.Theirs[hr]; aligned-1 < len(h) {
			values[hr] = h[aligned-1]
		}
	}
	for i, row := range d.Aligned {
		values[d.HeaderRows+i] = row.Theirs.Value(aligned)
	}
	return values
}
