// Package report renders run reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for sharing alongside the datasets
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably.
package report
