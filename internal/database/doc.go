// Package database provides the SQLite catalog of the IJ pipeline.
//
// The catalog stores:
//   - Downloaded spreadsheets with their URL, size and SHA3-256 digest
//   - Tidy observations of every clean dataset, queryable with SQL
//   - One record per CLI run with its status and JSON summary
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
//  1. The catalog is a single file next to the data it describes
//  2. CGO-free implementation allows easy cross-compilation
//
// The CSV files remain the primary output. The catalog can be deleted at any
// time and is rebuilt by the next crawl and clean.
package database
