package exmerge

import (
	"errors"
	"fmt"

	"github.com/ukaji3/exmerge-go/pkg/exmerge/models"
)

// ErrFileNotFound indicates an input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates an input file is not a valid xlsx format.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrNoWorksheets indicates a workbook has no worksheet to compare.
var ErrNoWorksheets = errors.New("no worksheets")

// SheetError represents an error while reading or writing one worksheet.
type SheetError struct {
	SheetName string
	Side      models.Side
	Op        string // "read", "write", "formulas"
	Err       error
}

func (e *SheetError) Error() string {
	return fmt.Sprintf("%s error in sheet %q (%s): %v", e.Op, e.SheetName, e.Side, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// NewSheetError creates a new SheetError.
func NewSheetError(sheetName string, side models.Side, op string, err error) *SheetError {
	return &SheetError{
		SheetName: sheetName,
		Side:      side,
		Op:        op,
		Err:       err,
	}
}
