package models

// EditAction is a structural edit kind.
type EditAction string

const (
	// ActionInsert adds a theirs row or column to ours.
	ActionInsert EditAction = "insert"
	// ActionDelete removes an ours row or column.
	ActionDelete EditAction = "delete"
)

// RowEditOp is a requested row insert or delete.
type RowEditOp struct {
	Action EditAction `json:"action"`
	// Target is the ours physical row: the row to delete, or the row the
	// insert is placed before.
	Target int `json:"target"`
	// Aligned is the 1-based aligned row position (visual row - header rows).
	Aligned int `json:"aligned"`
	// Values seeds an inserted row, indexed by aligned column - 1.
	Values []Scalar `json:"values,omitempty"`
}

// ColumnEditOp is a requested column insert or delete.
type ColumnEditOp struct {
	Action EditAction `json:"action"`
	// Target is the ours physical column: the column to delete, or the
	// column the insert is placed before.
	Target int `json:"target"`
	// Aligned is the 1-based aligned column.
	Aligned int `json:"aligned"`
	// Values seeds an inserted column, indexed by visual row - 1.
	Values []Scalar `json:"values,omitempty"`
}

// CellWrite is a value destined for a physical cell after structural edits.
type CellWrite struct {
	Row   int    `json:"row"`
	Col   int    `json:"col"`
	Value Scalar `json:"value"`
}

// DropReason explains why a pending write has no physical target.
type DropReason string

const (
	// DropColumnDeleted means the target ours column is being deleted.
	DropColumnDeleted DropReason = "column-deleted"
	// DropRowDeleted means the target ours row is being deleted.
	DropRowDeleted DropReason = "row-deleted"
	// DropColumnMissing means ours has no such column.
	DropColumnMissing DropReason = "column-missing"
	// DropRowMissing means ours has no such row.
	DropRowMissing DropReason = "row-missing"
)

// DroppedWrite is a pending write that was discarded.
type DroppedWrite struct {
	// Row and Col are the visual row and aligned column of the write.
	Row    int        `json:"row"`
	Col    int        `json:"col"`
	Reason DropReason `json:"reason"`
}

// WriteSet is the ordered list of physical operations for one sheet.
// Apply order: ColumnDeletes, ColumnInserts, RowDeletes, RowInserts, Writes.
type WriteSet struct {
	// ColumnDeletes are ours physical columns, descending.
	ColumnDeletes []int `json:"column_deletes,omitempty"`
	// ColumnInserts are final physical positions, ascending.
	ColumnInserts []int `json:"column_inserts,omitempty"`
	// RowDeletes are ours physical rows, descending.
	RowDeletes []int `json:"row_deletes,omitempty"`
	// RowInserts are final physical positions, ascending.
	RowInserts []int          `json:"row_inserts,omitempty"`
	Writes     []CellWrite    `json:"writes,omitempty"`
	Dropped    []DroppedWrite `json:"dropped,omitempty"`
}
