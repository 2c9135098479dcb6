package report

import (
	"io"

	"github.com/printops/preflightreport/internal/model"
	"github.com/printops/preflightreport/internal/palette"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the full report. summary carries the run facts; when it
	// is nil one is derived from report.
	Write(report *model.Report, summary *model.Summary) (int, error)

	// WriteSummary outputs only the summary.
	WriteSummary(summary *model.Summary) (int, error)
}

// MultiWriter writes to several Writers in turn.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all Writers and stops at the first error.
func (m *MultiWriter) Write(report *model.Report, summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report, summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all Writers.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// summaryFor returns summary, or a fresh one derived from report.
func summaryFor(report *model.Report, summary *model.Summary) *model.Summary {
	if summary != nil {
		return summary
	}
	return model.NewSummary(report)
}

// coloredIssue is an issue together with its position and display color.
type coloredIssue struct {
	Kind  model.IssueKind
	Index int
	Color palette.Color
	model.Issue
}

// coloredIssues returns the issues of one kind with the colors the PDF uses.
func coloredIssues(report *model.Report, kind model.IssueKind) []coloredIssue {
	issues := report.IssuesOf(kind)
	colors := palette.Assign(issues, palette.ForKind(kind))
	out := make([]coloredIssue, len(issues))
	for i, issue := range issues {
		out[i] = coloredIssue{Kind: kind, Index: i + 1, Color: colors[i], Issue: issue}
	}
	return out
}
