package model

import "strconv"

// Column names of the clean CSV files.
// Identifier column names come from the source spreadsheets and are kept
// verbatim so that downstream notebooks can select on them.
const (
	// ColumnLabel is the row label column present in every source sheet.
	ColumnLabel = "Libellé"

	// ColumnAgeBracket is the age bracket column of the by-age sheets.
	ColumnAgeBracket = "Tranche d'âge"

	// ColumnCode is the NAF or region code column.
	ColumnCode = "Code"

	// ColumnSex carries the sex of the source file in the age-and-sex dataset.
	ColumnSex = "Sexe"

	// ColumnYear holds the former column header (one year per record).
	ColumnYear = "Année"

	// ColumnValue holds the normalized numeric value.
	ColumnValue = "value"

	// ColumnType holds the IJ category (e.g. "maternite-adoption").
	ColumnType = "Type IJ"

	// ColumnUnit holds the unit label of the source sheet.
	ColumnUnit = "unit"
)

// Record is one tidy observation: a single (row, year) cell of a wide sheet.
type Record struct {
	// Identifiers holds the identifier values of the source row, aligned
	// with Dataset.IdentifierColumns.
	Identifiers []string `json:"identifiers"`

	// Year is the header of the source value column.
	Year string `json:"year"`

	// Type is the IJ category of the source file.
	Type string `json:"type"`

	// Unit is the unit label of the source sheet.
	Unit string `json:"unit"`

	// Value is expressed in the canonical magnitude of Unit.
	// It is meaningless when Missing is true.
	Value float64 `json:"value"`

	// Missing is true when the source cell was empty.
	Missing bool `json:"missing,omitempty"`
}

// FormattedValue returns the value as written in CSV output: the shortest
// plain decimal that round-trips, or an empty string when missing. Whole
// values print without a decimal point ("1", not "1.0") and small amounts
// in billions never switch to exponent form.
func (r Record) FormattedValue() string {
	if r.Missing {
		return ""
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

// Identifier returns the identifier at position i, or "" if absent.
func (r Record) Identifier(i int) string {
	if i < 0 || i >= len(r.Identifiers) {
		return ""
	}
	return r.Identifiers[i]
}

// Dataset is the concatenation of tidy records for one categorical
// dimension (age, age and sex, NAF sector, region).
type Dataset struct {
	// Name is the short dataset name used on the command line ("age", "naf"...).
	Name string `json:"name"`

	// FileName is the CSV file name written to the clean data directory.
	FileName string `json:"file_name"`

	// IdentifierColumns names the identifier values of every record.
	IdentifierColumns []string `json:"identifier_columns"`

	// Records are kept in catalog iteration order; they are never sorted.
	Records []Record `json:"records"`
}

// Header returns the CSV header: identifier columns, then year, value,
// IJ type and unit.
func (d *Dataset) Header() []string {
	header := make([]string, 0, len(d.IdentifierColumns)+4)
	header = append(header, d.IdentifierColumns...)
	return append(header, ColumnYear, ColumnValue, ColumnType, ColumnUnit)
}

// Row returns the CSV fields of record i, in Header order.
func (d *Dataset) Row(i int) []string {
	r := d.Records[i]
	row := make([]string, 0, len(d.IdentifierColumns)+4)
	for j := range d.IdentifierColumns {
		row = append(row, r.Identifier(j))
	}
	return append(row, r.Year, r.FormattedValue(), r.Type, r.Unit)
}

// IdentifierIndex returns the position of the named identifier column,
// or -1 when the dataset has no such column.
func (d *Dataset) IdentifierIndex(name string) int {
	for i, c := range d.IdentifierColumns {
		if c == name {
			return i
		}
	}
	return -1
}
