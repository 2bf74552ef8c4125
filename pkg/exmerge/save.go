package exmerge

import (
	"errors"
	"fmt"
	"os"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/parser"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/plan"
	"github.com/xuri/excelize/v2"
)

var errSheetMissing = errors.New("sheet not found")

// SheetPlan is what to write for one worksheet: its diff (cells carry the
// chosen merged values) and the pending structural edits.
type SheetPlan struct {
	Diff  *models.SheetDiff
	Edits plan.EditSet
}

// Policy selects which structural changes from theirs AutoPlan takes.
type Policy struct {
	// TakeTheirsRows inserts theirs-only rows and deletes rows theirs
	// removed from base while ours left them untouched.
	TakeTheirsRows bool
	// TakeTheirsColumns does the same for columns.
	TakeTheirsColumns bool
}

// AutoPlan seeds an edit set from a diff according to policy. Ambiguous
// rows are never edited, and deletions only apply in three-way diffs.
func AutoPlan(d *models.SheetDiff, policy Policy) plan.EditSet {
	edits := plan.EditSet{}
	oursTouched := func(match func(models.MergeCell) bool) bool {
		for _, c := range d.Cells {
			if match(c) && (c.Status == models.StatusOursChanged || c.Status == models.StatusConflict) {
				return true
			}
		}
		return false
	}

	if policy.TakeTheirsColumns {
		for i, col := range d.Columns {
			aligned := i + 1
			switch {
			case col.Ours == 0 && col.Theirs > 0:
				edits, _ = plan.PlanColumnEdit(d, edits, models.ActionInsert, aligned, nil)
			case !d.TwoWay && col.Base > 0 && col.Ours > 0 && col.Theirs == 0:
				if !oursTouched(func(c models.MergeCell) bool { return c.Col == aligned }) {
					edits, _ = plan.PlanColumnEdit(d, edits, models.ActionDelete, aligned, nil)
				}
			}
		}
	}

	if policy.TakeTheirsRows {
		for i, row := range d.Aligned {
			aligned := i + 1
			if row.AmbiguousOurs || row.AmbiguousTheirs {
				continue
			}
			visual := d.HeaderRows + aligned
			switch {
			case row.Ours == nil && row.Theirs != nil:
				edits, _ = plan.PlanRowEdit(d, edits, models.ActionInsert, aligned, nil)
			case !d.TwoWay && row.Base != nil && row.Ours != nil && row.Theirs == nil:
				if !oursTouched(func(c models.MergeCell) bool { return !c.Header && c.Row == visual }) {
					edits, _ = plan.PlanRowEdit(d, edits, models.ActionDelete, aligned, nil)
				}
			}
		}
	}
	return edits
}

// Save writes the merged workbook: ours with every plan applied, saved to
// outPath. It returns the resolved write set of each plan, in order, so
// callers can report dropped writes.
func Save(oursPath, outPath string, plans []SheetPlan, opts Options) ([]models.WriteSet, error) {
	log := opts.logger()
	if _, err := os.Stat(oursPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, oursPath)
	}
	f, err := excelize.OpenFile(oursPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, oursPath, err)
	}
	defer f.Close()

	results := make([]models.WriteSet, len(plans))
	for i, p := range plans {
		if p.Diff == nil {
			continue
		}
		name := p.Diff.Name
		if idx, err := f.GetSheetIndex(name); err != nil || idx < 0 {
			return nil, NewSheetError(name, models.SideOurs, "write", errSheetMissing)
		}

		ws := plan.ResolveWriteSet(p.Diff, p.Diff.Cells, p.Edits)
		if err := parser.ApplyWriteSet(f, name, ws); err != nil {
			return nil, NewSheetError(name, models.SideOurs, "write", err)
		}
		if err := parser.PostProcessFormulas(f, name); err != nil {
			return nil, NewSheetError(name, models.SideOurs, "formulas", err)
		}
		for _, d := range ws.Dropped {
			log.Warn("merged value dropped", "sheet", name, "row", d.Row, "col", d.Col, "reason", d.Reason)
		}
		log.Debug("sheet written", "sheet", name,
			"writes", len(ws.Writes),
			"row_inserts", len(ws.RowInserts), "row_deletes", len(ws.RowDeletes),
			"column_inserts", len(ws.ColumnInserts), "column_deletes", len(ws.ColumnDeletes),
		)
		results[i] = ws
	}

	if err := f.SaveAs(outPath); err != nil {
		return nil, err
	}
	return results, nil
}
