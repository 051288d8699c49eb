package transform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// HeaderRowsSkipped is the number of banner rows above the header row in
// every source sheet.
const HeaderRowsSkipped = 7

// WideTable is one sheet in wide format: a header row, then data rows whose
// cells line up with the header.
type WideTable struct {
	// Header holds the column names. Year columns have the year as header.
	Header []string

	// Rows are padded to len(Header).
	Rows [][]string
}

// WithConstantColumn returns a copy of t with one more column holding value
// on every row. Fully empty rows are dropped so that they stay ignorable.
func (t *WideTable) WithConstantColumn(name, value string) *WideTable {
	out := &WideTable{
		Header: append(append(make([]string, 0, len(t.Header)+1), t.Header...), name),
		Rows:   make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		if isEmptyRow(row) {
			continue
		}
		out.Rows = append(out.Rows, append(append(make([]string, 0, len(row)+1), row...), value))
	}
	return out
}

// Workbook is an open source spreadsheet.
type Workbook struct {
	path string
	file *excelize.File
}

// OpenWorkbook opens the spreadsheet at path.
// A missing file is reported as ErrSourceNotFound.
func OpenWorkbook(path string) (*Workbook, error) {
	name := filepath.Base(path)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newSheetError(name, "", ComponentWorkbook, fmt.Errorf("%w: %s", ErrSourceNotFound, path))
		}
		return nil, newSheetError(name, "", ComponentWorkbook, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, newSheetError(name, "", ComponentWorkbook, err)
	}
	return &Workbook{path: path, file: f}, nil
}

// Name returns the file name of the workbook.
func (w *Workbook) Name() string {
	return filepath.Base(w.path)
}

// Close releases the workbook.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheet reads the named sheet, skipping skip banner rows. The first row
// after the banner is the header. Cell values are read raw, so numbers keep
// their full stored precision instead of the display format.
func (w *Workbook) Sheet(name string, skip int) (*WideTable, error) {
	idx, err := w.file.GetSheetIndex(name)
	if err != nil {
		return nil, newSheetError(w.Name(), name, ComponentSheet, err)
	}
	if idx < 0 {
		return nil, newSheetError(w.Name(), name, ComponentSheet, ErrMissingSheet)
	}

	rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, newSheetError(w.Name(), name, ComponentSheet, err)
	}
	if len(rows) <= skip {
		return nil, newSheetError(w.Name(), name, ComponentHeader,
			fmt.Errorf("%w: sheet has %d rows, header expected at row %d", ErrMissingColumn, len(rows), skip+1))
	}

	return newWideTable(rows[skip], rows[skip+1:]), nil
}

// newWideTable pads the header and every row to the widest row. Columns
// past the last header cell get an empty name.
func newWideTable(header []string, data [][]string) *WideTable {
	width := len(header)
	for _, row := range data {
		if len(row) > width {
			width = len(row)
		}
	}

	t := &WideTable{
		Header: pad(header, width),
		Rows:   make([][]string, 0, len(data)),
	}
	for _, row := range data {
		t.Rows = append(t.Rows, pad(row, width))
	}
	return t
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
