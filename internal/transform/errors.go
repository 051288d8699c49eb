package transform

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound indicates an expected spreadsheet is not in the raw directory.
	ErrSourceNotFound = errors.New("source spreadsheet not found")

	// ErrMissingSheet indicates a workbook lacks an expected sheet.
	ErrMissingSheet = errors.New("sheet not found")

	// ErrMissingColumn indicates a sheet lacks an identifier column.
	ErrMissingColumn = errors.New("column not found")

	// ErrMalformedValue indicates a value cell that is neither empty nor numeric.
	ErrMalformedValue = errors.New("malformed value")

	// ErrUnknownDataset indicates a dataset name absent from the catalog.
	ErrUnknownDataset = errors.New("unknown dataset")
)

// Components reported in SheetError.
const (
	ComponentWorkbook = "workbook"
	ComponentSheet    = "sheet"
	ComponentHeader   = "header"
	ComponentValues   = "values"
)

// SheetError represents a failure while reading one sheet of one workbook.
type SheetError struct {
	File      string
	Sheet     string
	Component string // "workbook", "sheet", "header", "values"
	Err       error
}

func (e *SheetError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("%s error in %s: %v", e.Component, e.File, e.Err)
	}
	return fmt.Sprintf("%s error in %s, sheet %q: %v", e.Component, e.File, e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

// newSheetError creates a new SheetError.
func newSheetError(file, sheet, component string, err error) *SheetError {
	return &SheetError{
		File:      file,
		Sheet:     sheet,
		Component: component,
		Err:       err,
	}
}
