package transform

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// sheetFixture describes one sheet of a test workbook. The header lands on
// the row right after the banner, like in the published files.
type sheetFixture struct {
	name   string
	header []any
	rows   [][]any
}

// writeWorkbook saves a workbook with the given sheets to dir/name.
func writeWorkbook(t *testing.T, dir, name string, sheets ...sheetFixture) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			t.Fatalf("failed to create sheet %q: %v", s.name, err)
		}
		setCell(t, f, s.name, 1, 1, "Assurance Maladie - séries annuelles")
		setCell(t, f, s.name, 1, 3, "Source : SNDS")
		for c, v := range s.header {
			setCell(t, f, s.name, c+1, HeaderRowsSkipped+1, v)
		}
		for r, row := range s.rows {
			for c, v := range row {
				setCell(t, f, s.name, c+1, HeaderRowsSkipped+2+r, v)
			}
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

func setCell(t *testing.T, f *excelize.File, sheet string, col, row int, v any) {
	t.Helper()

	if v == nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		t.Fatalf("invalid coordinates: %v", err)
	}
	if err := f.SetCellValue(sheet, cell, v); err != nil {
		t.Fatalf("failed to set %s!%s: %v", sheet, cell, err)
	}
}

// unitFixtures returns the three unit sheets of a dimension with the given
// identifier headers and a fixed two-row, two-year body.
func unitFixtures(suffix string, idHeader []any, ids [][]any) []sheetFixture {
	header := append(append([]any{}, idHeader...), 2022, 2023)
	values := map[string][2][2]any{
		"tous Nb arr, f(" + suffix + ")":  {{2000, 3000}, {4000, 5000}},
		"tous Nb jour, f(" + suffix + ")": {{3500000, 1000000}, {2000000, 500000}},
		"tous Mnt, f(" + suffix + ")":     {{1200000000, 2000000000}, {500000000, 250000000}},
	}

	fixtures := make([]sheetFixture, 0, 3)
	for _, us := range unitSheets(suffix) {
		v := values[us.Sheet]
		rows := make([][]any, 0, len(ids))
		for i, id := range ids {
			rows = append(rows, append(append([]any{}, id...), v[i][0], v[i][1]))
		}
		fixtures = append(fixtures, sheetFixture{name: us.Sheet, header: header, rows: rows})
	}
	return fixtures
}
