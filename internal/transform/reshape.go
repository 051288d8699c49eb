package transform

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/ijcnam/internal/model"
)

// ReshapeUnitSheet unpivots a wide table into tidy records.
//
// identifierColumns name the columns kept on every record; every other
// column with a non-empty header is a year column. Records are emitted year
// by year, and within a year row by row, each tagged with category and unit.
// Values are converted with Normalize. An empty value cell yields a record
// with Missing set; a non-numeric one fails with ErrMalformedValue.
// Fully empty rows are ignored.
func ReshapeUnitSheet(table *WideTable, identifierColumns []string, category, unit string) ([]model.Record, error) {
	idIdx, err := identifierIndexes(table.Header, identifierColumns)
	if err != nil {
		return nil, err
	}

	isID := make(map[int]bool, len(idIdx))
	for _, i := range idIdx {
		isID[i] = true
	}

	yearCols := make([]int, 0, len(table.Header))
	for i, h := range table.Header {
		if !isID[i] && normalizeHeader(h) != "" {
			yearCols = append(yearCols, i)
		}
	}

	rows := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		if !isEmptyRow(row) {
			rows = append(rows, row)
		}
	}

	records := make([]model.Record, 0, len(rows)*len(yearCols))
	for _, col := range yearCols {
		year := normalizeHeader(table.Header[col])
		for _, row := range rows {
			r := model.Record{
				Identifiers: make([]string, len(idIdx)),
				Year:        year,
				Type:        category,
				Unit:        unit,
			}
			for j, i := range idIdx {
				r.Identifiers[j] = strings.TrimSpace(row[i])
			}

			cell := strings.TrimSpace(row[col])
			if cell == "" {
				r.Missing = true
				records = append(records, r)
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: column %q, row %q: %q", ErrMalformedValue, year, strings.Join(r.Identifiers, " / "), cell)
			}
			r.Value = Normalize(unit, v)
			records = append(records, r)
		}
	}

	return records, nil
}

// identifierIndexes locates each identifier column in header.
func identifierIndexes(header, identifierColumns []string) ([]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := positions[key]; !seen && key != "" {
			positions[key] = i
		}
	}

	idx := make([]int, 0, len(identifierColumns))
	for _, name := range identifierColumns {
		i, ok := positions[normalizeHeader(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		idx = append(idx, i)
	}
	return idx, nil
}

// normalizeHeader makes header matching insensitive to Unicode composition
// ("â" as one or two code points) and surrounding whitespace.
func normalizeHeader(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
