package output

import "github.com/ukaji3/exmerge-go/pkg/exmerge/models"

// SheetSummary counts the cell and row statuses of one sheet diff.
type SheetSummary struct {
	Name          string `json:"name"`
	Strategy      string `json:"strategy"`
	OursChanged   int    `json:"ours_changed"`
	TheirsChanged int    `json:"theirs_changed"`
	BothSame      int    `json:"both_changed_same"`
	Conflicts     int    `json:"conflicts"`
	RowsAdded     int    `json:"rows_added"`
	RowsDeleted   int    `json:"rows_deleted"`
	RowsAmbiguous int    `json:"rows_ambiguous"`
	HasExactDiff  bool   `json:"has_exact_diff"`
}

// Summarize counts the statuses of a sheet diff. Header context cells
// are not counted.
func Summarize(sd *models.SheetDiff) SheetSummary {
	s := SheetSummary{Name: sd.Name, Strategy: sd.Strategy, HasExactDiff: sd.HasExactDiff}
	for _, c := range sd.Cells {
		switch c.Status {
		case models.StatusOursChanged:
			s.OursChanged++
		case models.StatusTheirsChanged:
			s.TheirsChanged++
		case models.StatusBothSame:
			s.BothSame++
		case models.StatusConflict:
			s.Conflicts++
		}
	}
	for _, r := range sd.Rows {
		switch r.Status {
		case models.RowAdded:
			s.RowsAdded++
		case models.RowDeleted:
			s.RowsDeleted++
		case models.RowAmbiguous:
			s.RowsAmbiguous++
		}
	}
	return s
}

// Suspicious reports a sheet where the coordinate scan found a
// difference but the aligned comparison classified no cell as changed,
// e.g. rows only reordered, or an alignment that went wrong.
func (s SheetSummary) Suspicious() bool {
	return s.HasExactDiff && s.OursChanged+s.TheirsChanged+s.BothSame+s.Conflicts == 0
}
