// Package transform turns the downloaded IJ spreadsheets into tidy CSV files.
//
// Every spreadsheet sheet published by the Assurance Maladie is a wide table:
// seven banner rows, a header row, then one row per category label with one
// column per year. ReshapeUnitSheet unpivots such a table into one record per
// (row, year) and converts values to the canonical magnitude of their unit.
//
// A static catalog (see Catalog) lists, for each output dataset, the source
// files and sheets to read. The Cleaner walks the catalog, writes one CSV per
// dataset and hands each dataset to optional sinks such as the SQLite catalog.
//
// Sheet names, column names and file names follow the publisher's current
// layout. A change on their side surfaces as ErrSourceNotFound,
// ErrMissingSheet or ErrMissingColumn rather than as silently wrong output.
package transform
