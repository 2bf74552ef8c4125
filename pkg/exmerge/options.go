// Package exmerge compares three revisions of an Excel workbook (base,
// ours, theirs), aligns their columns and rows, classifies every cell and
// writes a merged workbook from the chosen values and structural edits.
package exmerge

import (
	"log/slog"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/align"
)

const (
	// HeaderRowsAuto detects header rows from frozen panes or the sheet
	// contents.
	HeaderRowsAuto = -1

	// KeyAuto detects a primary-key column per sheet.
	KeyAuto = 0
	// KeyNone disables key-based row alignment.
	KeyNone = -1
)

// Options configures comparison behavior.
type Options struct {
	// HeaderRows is the number of header rows compared by fixed
	// coordinate. HeaderRowsAuto (or any negative value) detects it per
	// sheet when reading files.
	HeaderRows int
	// KeyColumn is the ours physical column (1-based) holding the primary
	// key, KeyAuto to detect one, or KeyNone for positional alignment.
	KeyColumn int
	// SimilarityThreshold overrides the minimum row similarity for a
	// heuristic match. Zero keeps the default.
	SimilarityThreshold float64
	// ExactScanBase includes base in the coordinate-by-coordinate scan.
	ExactScanBase bool
	// Workers bounds how many sheets are compared concurrently. Zero or
	// less means one per CPU.
	Workers int
	// Logger receives debug and warning records. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// DefaultOptions returns default comparison options.
func DefaultOptions() Options {
	return Options{
		HeaderRows:          HeaderRowsAuto,
		KeyColumn:           KeyAuto,
		SimilarityThreshold: align.DefaultParams().Threshold,
		ExactScanBase:       true,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o Options) params() align.Params {
	p := align.DefaultParams()
	if o.SimilarityThreshold > 0 {
		p.Threshold = o.SimilarityThreshold
	}
	return p
}
