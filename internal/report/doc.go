// Package report renders finished searches.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown output for sharing a search result
//
// Design decision: We separate report writing from report data structures
// (which are in the model package). New output formats can be added
// without touching the crawler or the archive.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
