package plan

import (
	"sort"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
)

// ResolveWriteSet turns merged cells and pending edits into physical
// operations on the ours worksheet. Cells whose merged value already
// equals ours produce no write. Inserted rows and columns are filled from
// their edit values only. A merged value that has no surviving ours target
// is reported in Dropped, unless it would only have cleared a cell that
// was deleted anyway.
func ResolveWriteSet(d *models.SheetDiff, cells []models.MergeCell, edits EditSet) models.WriteSet {
	cm, rm := ColumnMap(edits), RowMap(edits)
	ws := models.WriteSet{
		ColumnDeletes: cm.Deletes(),
		ColumnInserts: cm.Inserts(),
		RowDeletes:    rm.Deletes(),
		RowInserts:    rm.Inserts(),
	}
	written := make(map[[2]int]bool)
	write := func(row, col int, v models.Scalar) {
		key := [2]int{row, col}
		if written[key] {
			return
		}
		written[key] = true
		ws.Writes = append(ws.Writes, models.CellWrite{Row: row, Col: col, Value: v})
	}

	for _, c := range cells {
		if insertedRow(edits, d, c.Row) || insertedColumn(edits, c.Col) {
			continue
		}
		if normalize.Equal(c.Merged, c.Ours) && c.OursRow != 0 && c.OursCol != 0 {
			continue
		}
		row, reason := resolveRow(d, rm, c)
		if reason == "" {
			var col int
			col, reason = resolveColumn(cm, c)
			if reason == "" {
				write(row, col, c.Merged)
				continue
			}
		}
		if normalize.IsEmpty(c.Merged) && (normalize.IsEmpty(c.Ours) || reason == models.DropRowDeleted || reason == models.DropColumnDeleted) {
			continue
		}
		ws.Dropped = append(ws.Dropped, models.DroppedWrite{Row: c.Row, Col: c.Col, Reason: reason})
	}

	for aligned, op := range edits.Rows {
		if op.Action != models.ActionInsert {
			continue
		}
		row, ok := rm.Inserted(aligned)
		if !ok {
			continue
		}
		for i, v := range op.Values {
			if normalize.IsEmpty(v) || i >= len(d.Columns) {
				continue
			}
			if col, ok := finalColumn(d, cm, i+1); ok {
				write(row, col, v)
			}
		}
	}

	for aligned, op := range edits.Columns {
		if op.Action != models.ActionInsert {
			continue
		}
		col, ok := cm.Inserted(aligned)
		if !ok {
			continue
		}
		for i, v := range op.Values {
			visual := i + 1
			if normalize.IsEmpty(v) || insertedRow(edits, d, visual) {
				continue
			}
			if row, ok := finalRow(d, rm, visual); ok {
				write(row, col, v)
			}
		}
	}

	sort.Slice(ws.Writes, func(i, j int) bool {
		if ws.Writes[i].Row != ws.Writes[j].Row {
			return ws.Writes[i].Row < ws.Writes[j].Row
		}
		return ws.Writes[i].Col < ws.Writes[j].Col
	})
	sort.SliceStable(ws.Dropped, func(i, j int) bool {
		if ws.Dropped[i].Row != ws.Dropped[j].Row {
			return ws.Dropped[i].Row < ws.Dropped[j].Row
		}
		return ws.Dropped[i].Col < ws.Dropped[j].Col
	})
	return ws
}

func insertedRow(edits EditSet, d *models.SheetDiff, visual int) bool {
	if visual <= d.HeaderRows {
		return false
	}
	op, ok := edits.Rows[visual-d.HeaderRows]
	return ok && op.Action == models.ActionInsert
}

func insertedColumn(edits EditSet, aligned int) bool {
	op, ok := edits.Columns[aligned]
	return ok && op.Action == models.ActionInsert
}

func resolveRow(d *models.SheetDiff, rm *IndexMap, c models.MergeCell) (int, models.DropReason) {
	if c.Header {
		if p, ok := rm.Resolve(c.Row); ok {
			return p, ""
		}
		return 0, models.DropRowDeleted
	}
	if c.OursRow == 0 {
		return 0, models.DropRowMissing
	}
	p, ok := rm.Resolve(c.OursRow)
	if !ok {
		return 0, models.DropRowDeleted
	}
	return p, ""
}

func resolveColumn(cm *IndexMap, c models.MergeCell) (int, models.DropReason) {
	if c.OursCol == 0 {
		return 0, models.DropColumnMissing
	}
	p, ok := cm.Resolve(c.OursCol)
	if !ok {
		return 0, models.DropColumnDeleted
	}
	return p, ""
}

// finalColumn resolves an aligned column to its final physical column.
func finalColumn(d *models.SheetDiff, cm *IndexMap, aligned int) (int, bool) {
	if p, ok := cm.Inserted(aligned); ok {
		return p, true
	}
	if aligned < 1 || aligned > len(d.Columns) || d.Columns[aligned-1].Ours == 0 {
		return 0, false
	}
	return cm.Resolve(d.Columns[aligned-1].Ours)
}

// finalRow resolves a visual row to its final physical row.
func finalRow(d *models.SheetDiff, rm *IndexMap, visual int) (int, bool) {
	if visual <= d.HeaderRows {
		return rm.Resolve(visual)
	}
	aligned := visual - d.HeaderRows
	if p, ok := rm.Inserted(aligned); ok {
		return p, true
	}
	if aligned > len(d.Aligned) || d.Aligned[aligned-1].Ours == nil {
		return 0, false
	}
	return rm.Resolve(d.Aligned[aligned-1].Ours.Physical)
}
