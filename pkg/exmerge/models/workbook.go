package models

// CellStatus is the three-way classification of one cell.
type CellStatus string

const (
	// StatusUnchanged means no side changed the cell.
	StatusUnchanged CellStatus = "unchanged"
	// StatusOursChanged means only ours differs from base.
	StatusOursChanged CellStatus = "ours-changed"
	// StatusTheirsChanged means only theirs differs from base.
	StatusTheirsChanged CellStatus = "theirs-changed"
	// StatusBothSame means ours and theirs made the same change.
	StatusBothSame CellStatus = "both-changed-same"
	// StatusConflict means ours and theirs changed the cell differently.
	StatusConflict CellStatus = "conflict"
)

// RowStatus summarizes one visual row.
type RowStatus string

const (
	// RowUnchanged is a row with no changed cell.
	RowUnchanged RowStatus = "unchanged"
	// RowModified is a row present on every side with at least one changed cell.
	RowModified RowStatus = "modified"
	// RowAdded is a row missing from base.
	RowAdded RowStatus = "added"
	// RowDeleted is a base row that ours or theirs removed.
	RowDeleted RowStatus = "deleted"
	// RowAmbiguous is a row whose match could not be decided.
	RowAmbiguous RowStatus = "ambiguous"
)

// MergeCell is one non-unchanged cell of the merge grid.
type MergeCell struct {
	// Row is the 1-based visual row.
	Row int `json:"row"`
	// Col is the 1-based aligned column.
	Col int `json:"col"`

	Base   Scalar `json:"base"`
	Ours   Scalar `json:"ours"`
	Theirs Scalar `json:"theirs"`

	// Physical coordinates per side, 0 when the side lacks the row or column.
	BaseRow   int `json:"base_row,omitempty"`
	OursRow   int `json:"ours_row,omitempty"`
	TheirsRow int `json:"theirs_row,omitempty"`
	BaseCol   int `json:"base_col,omitempty"`
	OursCol   int `json:"ours_col,omitempty"`
	TheirsCol int `json:"theirs_col,omitempty"`

	Status CellStatus `json:"status"`
	// Merged is the value to write; starts as the default for Status.
	Merged Scalar `json:"merged"`
	// Header is set for cells in the frozen header rows.
	Header bool `json:"header,omitempty"`
}

// RowMeta describes one visual row.
type RowMeta struct {
	Row             int       `json:"row"`
	BaseRow         int       `json:"base_row,omitempty"`
	OursRow         int       `json:"ours_row,omitempty"`
	TheirsRow       int       `json:"theirs_row,omitempty"`
	Key             string    `json:"key,omitempty"`
	AmbiguousOurs   bool      `json:"ambiguous_ours,omitempty"`
	AmbiguousTheirs bool      `json:"ambiguous_theirs,omitempty"`
	Status          RowStatus `json:"status"`
}

// HeaderBlock holds the frozen header rows of each side in aligned-column space.
type HeaderBlock struct {
	Base   [][]Scalar
	Ours   [][]Scalar
	Theirs [][]Scalar
}

// SheetDiff is the result of comparing one worksheet triple.
type SheetDiff struct {
	// Name is the sheet name in ours (or theirs when ours lacks it).
	Name string `json:"name"`
	// HeaderRows is the frozen row count used for the comparison.
	HeaderRows int `json:"header_rows"`
	// KeyColumn is the aligned primary-key column, 0 when rows were aligned without a key.
	KeyColumn int `json:"key_column,omitempty"`
	// Strategy names the row alignment strategy used.
	Strategy string `json:"strategy"`
	// TwoWay is set when no base was compared.
	TwoWay bool `json:"two_way,omitempty"`

	Columns []AlignedColumn `json:"columns"`
	Cells   []MergeCell     `json:"cells"`
	Rows    []RowMeta       `json:"rows"`
	// HasExactDiff is the coordinate-by-coordinate scan result.
	HasExactDiff bool `json:"has_exact_diff"`

	// Aligned and Headers feed the edit planner.
	Aligned []AlignedRow `json:"-"`
	Headers HeaderBlock  `json:"-"`
}

// WorkbookDiff is the result of comparing three workbooks.
type WorkbookDiff struct {
	// BookName is the ours workbook file name (no path).
	BookName string `json:"book_name"`
	// Sheets holds one diff per paired worksheet, in ours order.
	Sheets []SheetDiff `json:"sheets"`
}
