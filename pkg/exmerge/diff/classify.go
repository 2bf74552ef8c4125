// Package diff classifies aligned cells into three-way merge statuses.
package diff

import (
	"sort"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
)

// Classify returns the status of one cell and its default merged value.
func Classify(b, o, t models.Scalar) (models.CellStatus, models.Scalar) {
	kb, ko, kt := normalize.Key(b), normalize.Key(o), normalize.Key(t)
	eqBO, eqBT, eqOT := kb == ko, kb == kt, ko == kt
	switch {
	case eqBO && eqBT:
		return models.StatusUnchanged, b
	case !eqBO && eqBT:
		return models.StatusOursChanged, o
	case eqBO && !eqBT:
		return models.StatusTheirsChanged, t
	case eqOT:
		return models.StatusBothSame, o
	default:
		return models.StatusConflict, o
	}
}

// ClassifyTwoWay compares ours and theirs without a common ancestor. Any
// difference is a conflict that keeps ours until a choice is made.
func ClassifyTwoWay(o, t models.Scalar) (models.CellStatus, models.Scalar) {
	if normalize.Equal(o, t) {
		return models.StatusUnchanged, o
	}
	return models.StatusConflict, o
}

// Input is one aligned worksheet triple.
type Input struct {
	Base, Ours, Theirs models.Grid
	// HasBase is false for two-way comparisons.
	HasBase    bool
	HeaderRows int
	Columns    []models.AlignedColumn
	Rows       []models.AlignedRow
}

func (in Input) classify(b, o, t models.Scalar) (models.CellStatus, models.Scalar) {
	if !in.HasBase {
		return ClassifyTwoWay(o, t)
	}
	return Classify(b, o, t)
}

// Cells returns every non-unchanged cell sorted by visual row and aligned
// column. Header rows are compared at their fixed physical rows; in every
// column that differs somewhere, unchanged header cells are kept too so
// the column stays labelled.
func Cells(in Input) []models.MergeCell {
	var cells []models.MergeCell
	emitted := make(map[[2]int]bool)
	diffCols := make(map[int]bool)

	for hr := 1; hr <= in.HeaderRows; hr++ {
		for ci, col := range in.Columns {
			c := in.headerCell(hr, ci+1, col)
			if c.Status == models.StatusUnchanged {
				continue
			}
			cells = append(cells, c)
			emitted[[2]int{hr, ci + 1}] = true
			diffCols[ci+1] = true
		}
	}

	for ri, row := range in.Rows {
		visual := in.HeaderRows + ri + 1
		for ci, col := range in.Columns {
			b, o, t := row.Base.Value(ci+1), row.Ours.Value(ci+1), row.Theirs.Value(ci+1)
			if normalize.IsEmpty(b) && normalize.IsEmpty(o) && normalize.IsEmpty(t) {
				continue
			}
			status, merged := in.classify(b, o, t)
			if status == models.StatusUnchanged {
				continue
			}
			cells = append(cells, models.MergeCell{
				Row:       visual,
				Col:       ci + 1,
				Base:      b,
				Ours:      o,
				Theirs:    t,
				BaseRow:   row.Physical(models.SideBase),
				OursRow:   row.Physical(models.SideOurs),
				TheirsRow: row.Physical(models.SideTheirs),
				BaseCol:   col.Base,
				OursCol:   col.Ours,
				TheirsCol: col.Theirs,
				Status:    status,
				Merged:    merged,
			})
			diffCols[ci+1] = true
		}
	}

	for hr := 1; hr <= in.HeaderRows; hr++ {
		for ci, col := range in.Columns {
			if !diffCols[ci+1] || emitted[[2]int{hr, ci + 1}] {
				continue
			}
			c := in.headerCell(hr, ci+1, col)
			if normalize.IsEmpty(c.Base) && normalize.IsEmpty(c.Ours) && normalize.IsEmpty(c.Theirs) {
				continue
			}
			cells = append(cells, c)
		}
	}

	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	return cells
}

func (in Input) headerCell(hr, alignedCol int, col models.AlignedColumn) models.MergeCell {
	c := models.MergeCell{
		Row:    hr,
		Col:    alignedCol,
		Header: true,
	}
	if in.HasBase && col.Base > 0 {
		c.Base = in.Base.At(hr, col.Base)
		c.BaseRow, c.BaseCol = hr, col.Base
	}
	if col.Ours > 0 {
		c.Ours = in.Ours.At(hr, col.Ours)
		c.OursRow, c.OursCol = hr, col.Ours
	}
	if col.Theirs > 0 {
		c.Theirs = in.Theirs.At(hr, col.Theirs)
		c.TheirsRow, c.TheirsCol = hr, col.Theirs
	}
	c.Status, c.Merged = in.classify(c.Base, c.Ours, c.Theirs)
	return c
}

// RowsMeta describes each visual data row. cells is the output of Cells.
func RowsMeta(in Input, cells []models.MergeCell) []models.RowMeta {
	changed := make(map[int]bool)
	for _, c := range cells {
		if !c.Header && c.Status != models.StatusUnchanged {
			changed[c.Row] = true
		}
	}

	meta := make([]models.RowMeta, len(in.Rows))
	for i, row := range in.Rows {
		m := models.RowMeta{
			Row:             in.HeaderRows + i + 1,
			BaseRow:         row.Physical(models.SideBase),
			OursRow:         row.Physical(models.SideOurs),
			TheirsRow:       row.Physical(models.SideTheirs),
			Key:             row.Key,
			AmbiguousOurs:   row.AmbiguousOurs,
			AmbiguousTheirs: row.AmbiguousTheirs,
		}
		switch {
		case row.AmbiguousOurs || row.AmbiguousTheirs:
			m.Status = models.RowAmbiguous
		case in.HasBase && row.Base == nil:
			m.Status = models.RowAdded
		case in.HasBase && (row.Ours == nil || row.Theirs == nil):
			m.Status = models.RowDeleted
		case !in.HasBase && (row.Ours == nil || row.Theirs == nil):
			m.Status = models.RowAdded
		case changed[m.Row]:
			m.Status = models.RowModified
		default:
			m.Status = models.RowUnchanged
		}
		meta[i] = m
	}
	return meta
}
