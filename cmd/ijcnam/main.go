// Package main provides the entry point for the ijcnam CLI.
//
// ijcnam downloads the Assurance Maladie (CNAM) daily sick-leave allowance
// (IJ) open-data spreadsheets and reshapes them into tidy CSV files.
//
// Usage:
//
//	ijcnam crawl
//	ijcnam clean [--only age,naf]
//	ijcnam run
//
// See --help for all available options.
package main

// main is the entry point for ijcnam.
func main() {
	Execute()
}
