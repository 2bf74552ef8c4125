// Package models defines data structures shared by the merge engine.
package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// ScalarKind identifies the dynamic type held by a Scalar.
type ScalarKind uint8

const (
	// KindNull is an empty cell.
	KindNull ScalarKind = iota
	// KindString is a text value.
	KindString
	// KindNumber is a numeric value.
	KindNumber
)

// Scalar is the only comparable cell unit: a string, a number or null.
type Scalar struct {
	Kind ScalarKind
	Str  string
	Num  float64
}

// Null returns the null scalar.
func Null() Scalar { return Scalar{} }

// String returns a text scalar.
func String(s string) Scalar { return Scalar{Kind: KindString, Str: s} }

// Number returns a numeric scalar.
func Number(n float64) Scalar { return Scalar{Kind: KindNumber, Num: n} }

// IsNull reports whether the scalar holds no value.
func (s Scalar) IsNull() bool { return s.Kind == KindNull }

// Interface returns the scalar as nil, string or float64.
func (s Scalar) Interface() interface{} {
	switch s.Kind {
	case KindString:
		return s.Str
	case KindNumber:
		return s.Num
	default:
		return nil
	}
}

// MarshalJSON encodes the scalar as JSON null, string or number.
func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.Kind {
	case KindString:
		return json.Marshal(s.Str)
	case KindNumber:
		if math.IsNaN(s.Num) || math.IsInf(s.Num, 0) {
			return json.Marshal(strconv.FormatFloat(s.Num, 'g', -1, 64))
		}
		return []byte(strconv.FormatFloat(s.Num, 'f', -1, 64)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes JSON null, string or number into the scalar.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case string:
		*s = String(x)
	case float64:
		*s = Number(x)
	default:
		*s = Null()
	}
	return nil
}

// RawKind identifies the variant held by a RawValue.
type RawKind uint8

const (
	// RawScalar is a plain string, number or empty cell.
	RawScalar RawKind = iota
	// RawRichText is a cell made of formatted text runs.
	RawRichText
	// RawFormula is a formula cell with an optional cached result.
	RawFormula
	// RawDate is a date or date-time cell.
	RawDate
	// RawOther is anything else (booleans, error codes, unknown types).
	RawOther
)

// RawValue is a cell as read from a workbook, before normalization.
type RawValue struct {
	Kind RawKind
	// Scalar holds the value for RawScalar.
	Scalar Scalar
	// Runs holds the text runs for RawRichText.
	Runs []string
	// Formula holds the formula text for RawFormula.
	Formula string
	// Result is the cached result of a formula, nil when none is cached.
	Result *Scalar
	// Time holds the value for RawDate.
	Time time.Time
	// Other holds the value for RawOther.
	Other interface{}
}

// Grid is one worksheet as normalized scalars, indexed [row-1][col-1].
// Rows may have different lengths; missing cells are null.
type Grid [][]Scalar

// At returns the cell at a 1-based coordinate, null when out of range.
func (g Grid) At(row, col int) Scalar {
	if row < 1 || row > len(g) {
		return Null()
	}
	r := g[row-1]
	if col < 1 || col > len(r) {
		return Null()
	}
	return r[col-1]
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int { return len(g) }

// Cols returns the width of the widest row.
func (g Grid) Cols() int {
	n := 0
	for _, r := range g {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}
