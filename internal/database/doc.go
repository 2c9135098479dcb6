// Package database provides SQLite-based run history for preflightreport.
//
// Every generated report is recorded as a run: the summary counts, the
// digest of the preflight input, where the PDF went, and the issue messages.
// The history command lists runs and compares the two latest runs of a
// document to show which issues are new and which were resolved.
//
// The database is a single file in the XDG data directory, opened through
// the CGO-free modernc.org/sqlite driver.
package database
