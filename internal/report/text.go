package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/printops/preflightreport/internal/model"
)

// TextWriter outputs a short human-readable summary.
type TextWriter struct {
	baseWriter

	// verbose lists every issue message.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose lists every issue message instead of the counts only.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary of report, followed by the issue list with
// color codes when verbose.
func (w *TextWriter) Write(report *model.Report, summary *model.Summary) (int, error) {
	var sb strings.Builder
	w.writeSummary(&sb, summaryFor(report, summary))

	if w.verbose {
		for _, kind := range model.Kinds {
			for _, ci := range coloredIssues(report, kind) {
				fmt.Fprintf(&sb, "  [%s] %s %d: %s (%d location(s))\n",
					ci.Color.Hex(), kind, ci.Index, ci.Message, len(ci.Locations))
			}
		}
	}

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs the summary only.
func (w *TextWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder
	w.writeSummary(&sb, summary)
	return w.output.Write([]byte(sb.String()))
}

func (w *TextWriter) writeSummary(sb *strings.Builder, s *model.Summary) {
	fmt.Fprintf(sb, "%s\n", s.DocumentName)
	fmt.Fprintf(sb, "  Profile:  %s\n", s.Profile)
	fmt.Fprintf(sb, "  Inks:     %s\n", s.Inks)
	fmt.Fprintf(sb, "  Issues:   %d warning(s), %d error(s), %d located\n", s.WarningCount, s.ErrorCount, s.LocatedCount)
	if s.OutputPath != "" {
		fmt.Fprintf(sb, "  Report:   %s\n", s.OutputPath)
	}
}
