// Package main provides the entry point for the preflightreport CLI.
//
// preflightreport renders two-page A4 PDF reports from preflight analysis
// results. Page one lists the document metadata, page boxes and every
// warning and error; page two overlays the issue regions on a preview of
// the analysed page.
//
// Usage:
//
//	preflightreport render flyer.xml
//	preflightreport render --output-dir reports/ jobs/*.xml
//	preflightreport history flyer.pdf
//
// See --help for all available options.
package main

// main is the entry point for preflightreport.
func main() {
	Execute()
}
