package models

// Side names one of the three versions being compared.
type Side string

const (
	// SideBase is the common ancestor.
	SideBase Side = "base"
	// SideOurs is the local version; merged output is written over it.
	SideOurs Side = "ours"
	// SideTheirs is the incoming version.
	SideTheirs Side = "theirs"
)

// TypeSignature counts value kinds over a column sample.
type TypeSignature struct {
	Numeric int `json:"numeric"`
	Text    int `json:"text"`
	Empty   int `json:"empty"`
	Other   int `json:"other"`
}

// Total returns the number of sampled cells.
func (t TypeSignature) Total() int {
	return t.Numeric + t.Text + t.Empty + t.Other
}

// ColumnRecord describes one physical column of one side.
type ColumnRecord struct {
	// Physical is the 1-based column number in the sheet.
	Physical int `json:"physical"`
	// HeaderText is the lower-cased header rows joined by spaces.
	HeaderText string `json:"header_text"`
	// HeaderKey is HeaderText reduced to letters and digits.
	HeaderKey string `json:"header_key"`
	// Types is the type distribution over the sampled data rows.
	Types TypeSignature `json:"types"`
	// Samples holds distinct normalized values from the sampled rows.
	Samples []string `json:"samples,omitempty"`
}

// AlignedColumn maps one aligned column to a physical column per side.
// A zero field means the side has no such column.
type AlignedColumn struct {
	Base   int `json:"base,omitempty"`
	Ours   int `json:"ours,omitempty"`
	Theirs int `json:"theirs,omitempty"`
}

// Get returns the physical column for a side.
func (c AlignedColumn) Get(s Side) int {
	switch s {
	case SideBase:
		return c.Base
	case SideOurs:
		return c.Ours
	default:
		return c.Theirs
	}
}

// RowRecord is one non-empty data row of one side in aligned-column space.
type RowRecord struct {
	// Physical is the 1-based row number in the sheet.
	Physical int
	// Seq is the 0-based position among non-empty data rows.
	Seq int
	// Values is indexed by aligned column - 1.
	Values []Scalar
	// Keys holds the normalized comparison string of each value.
	Keys []string
	// NonEmpty lists 0-based aligned column positions holding data.
	NonEmpty []int
	// Key is the primary key value when HasKey is set.
	Key    string
	HasKey bool
}

// Value returns the scalar at a 1-based aligned column.
func (r *RowRecord) Value(col int) Scalar {
	if r == nil || col < 1 || col > len(r.Values) {
		return Null()
	}
	return r.Values[col-1]
}

// AlignedRow is one entry of visual row space.
type AlignedRow struct {
	Base            *RowRecord
	Ours            *RowRecord
	Theirs          *RowRecord
	Key             string
	AmbiguousOurs   bool
	AmbiguousTheirs bool
}

// Get returns the row record for a side.
func (r AlignedRow) Get(s Side) *RowRecord {
	switch s {
	case SideBase:
		return r.Base
	case SideOurs:
		return r.Ours
	default:
		return r.Theirs
	}
}

// Physical returns the physical row number for a side, 0 when absent.
func (r AlignedRow) Physical(s Side) int {
	if rec := r.Get(s); rec != nil {
		return rec.Physical
	}
	return 0
}
