// Package report writes textual companions of a rendered preflight report.
//
// This package contains writers for different output formats:
//   - TextWriter: short human-readable summary for terminal display
//   - MarkdownWriter: GitHub Flavored Markdown sidecar next to the PDF
//   - JSONWriter: structured JSON sidecar for tool integration
//
// Every writer lists issues with the same colors the PDF uses, so a reader
// can find an issue of the sidecar on the diagram page.
package report
