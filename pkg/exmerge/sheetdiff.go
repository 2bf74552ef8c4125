package exmerge

import (
	"strings"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/align"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/diff"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
	"github.com/ukaji3/exmerge-go/pkg/exmerge/normalize"
)

// ComputeThreeWayDiff compares one worksheet triple. A nil base selects a
// two-way comparison of ours against theirs. The result depends only on
// the grids and opts; a negative opts.HeaderRows counts as zero here
// since detection needs the workbook.
func ComputeThreeWayDiff(base, ours, theirs models.Grid, opts Options) *models.SheetDiff {
	hasBase := base != nil
	headerRows := max(opts.HeaderRows, 0)

	var baseCols []models.ColumnRecord
	if hasBase {
		baseCols = align.BuildColumns(base, headerRows)
	}
	cols := align.Columns(baseCols, align.BuildColumns(ours, headerRows), align.BuildColumns(theirs, headerRows))

	keyCol := resolveKeyColumn(base, ours, theirs, hasBase, cols, headerRows, opts.KeyColumn)
	build := func(g models.Grid, side models.Side) []models.RowRecord {
		if g == nil {
			return nil
		}
		return align.BuildRows(g, cols, side, headerRows, keyCol)
	}
	baseRows := build(base, models.SideBase)
	oursRows := build(ours, models.SideOurs)
	theirsRows := build(theirs, models.SideTheirs)

	rows, strategy := align.Rows(baseRows, oursRows, theirsRows, cols, keyCol, opts.params())

	in := diff.Input{
		Base:       base,
		Ours:       ours,
		Theirs:     theirs,
		HasBase:    hasBase,
		HeaderRows: headerRows,
		Columns:    cols,
		Rows:       rows,
	}
	cells := diff.Cells(in)

	d := &models.SheetDiff{
		HeaderRows:   headerRows,
		KeyColumn:    keyCol,
		Strategy:     string(strategy),
		TwoWay:       !hasBase,
		Columns:      cols,
		Cells:        cells,
		Rows:         diff.RowsMeta(in, cells),
		HasExactDiff: diff.HasExactDiff(base, ours, theirs, opts.ExactScanBase && hasBase),
		Aligned:      rows,
		Headers: models.HeaderBlock{
			Base:   headerBlock(base, cols, models.SideBase, headerRows),
			Ours:   headerBlock(ours, cols, models.SideOurs, headerRows),
			Theirs: headerBlock(theirs, cols, models.SideTheirs, headerRows),
		},
	}

	opts.logger().Debug("sheet compared",
		"strategy", d.Strategy,
		"key_column", keyCol,
		"columns", len(cols),
		"rows", len(rows),
		"cells", len(cells),
		"exact_diff", d.HasExactDiff,
	)
	return d
}

// resolveKeyColumn maps the configured key column to an aligned column,
// or detects one. It returns 0 for positional alignment.
func resolveKeyColumn(base, ours, theirs models.Grid, hasBase bool, cols []models.AlignedColumn, headerRows, keyColumn int) int {
	switch {
	case keyColumn == KeyNone || keyColumn < 0:
		return 0
	case keyColumn > 0:
		for i, c := range cols {
			if c.Ours == keyColumn {
				return i + 1
			}
		}
		return 0
	}

	var sides [][]models.RowRecord
	if hasBase {
		sides = append(sides, align.BuildRows(base, cols, models.SideBase, headerRows, 0))
	}
	sides = append(sides,
		align.BuildRows(ours, cols, models.SideOurs, headerRows, 0),
		align.BuildRows(theirs, cols, models.SideTheirs, headerRows, 0),
	)
	return align.DetectKeyColumn(sides, columnHeaders(base, ours, theirs, cols, headerRows))
}

// columnHeaders returns the header text of each aligned column, taken from
// the first side that has the column.
func columnHeaders(base, ours, theirs models.Grid, cols []models.AlignedColumn, headerRows int) []string {
	headers := make([]string, len(cols))
	for i, c := range cols {
		for _, side := range []struct {
			g    models.Grid
			phys int
		}{{ours, c.Ours}, {theirs, c.Theirs}, {base, c.Base}} {
			if side.phys == 0 || side.g == nil {
				continue
			}
			var parts []string
			for hr := 1; hr <= headerRows; hr++ {
				if k := normalize.Key(side.g.At(hr, side.phys)); k != "" {
					parts = append(parts, k)
				}
			}
			headers[i] = strings.Join(parts, " ")
			break
		}
	}
	return headers
}

func headerBlock(g models.Grid, cols []models.AlignedColumn, side models.Side, headerRows int) [][]models.Scalar {
	if g == nil || headerRows == 0 {
		return nil
	}
	block := make([][]models.Scalar, headerRows)
	for hr := range block {
		block[hr] = make([]models.Scalar, len(cols))
		for i, c := range cols {
			if p := c.Get(side); p > 0 {
				block[hr][i] = g.At(hr+1, p)
			}
		}
	}
	return block
}

// ApplyChoice sets the merged value of a cell from one side.
func ApplyChoice(cell *models.MergeCell, source models.Side) {
	switch source {
	case models.SideBase:
		cell.Merged = cell.Base
	case models.SideOurs:
		cell.Merged = cell.Ours
	case models.SideTheirs:
		cell.Merged = cell.Theirs
	}
}
