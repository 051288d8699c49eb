// Package model defines the data structures shared by the crawler, the
// transformer, the catalog and the report writers.
//
// This package contains the following main types:
//   - LinkSet: deduplicated topic page URLs discovered on the seed page
//   - Download: a spreadsheet file stored in the raw data directory
//   - Record: one tidy observation (identifiers, year, IJ type, unit, value)
//   - Dataset: the concatenated records of one categorical dimension
//   - RunReport: the summary of one crawl and/or clean run
//
// Models are kept free of I/O so that every other package can depend on
// them without import cycles. They are serializable to JSON for reports
// and catalog storage.
package model
