package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/printops/preflightreport/internal/model"
)

// maxMessageLen bounds issue messages in Markdown tables. The full text is
// kept in the collapsible location details.
const maxMessageLen = 80

// MarkdownWriter outputs reports in Markdown format.
// The output is meant to be reviewed next to the PDF in a pull request or
// a job ticket.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report, summary *model.Summary) (int, error) {
	s := summaryFor(report, summary)
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, s)
	w.writeCounts(md, s)
	w.writeBoxes(md, report.PageBoxes)
	for _, kind := range model.Kinds {
		w.writeIssues(md, kind, coloredIssues(report, kind))
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs the header and counts only.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeCounts(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the document name and the metadata table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, s *model.Summary) {
	md.H1("Preflight report: " + s.DocumentName)
	md.PlainText("")

	rows := [][]string{
		{"Preflight profile", s.Profile},
		{"Creator", s.Creator},
		{"Separations used in document", s.Inks},
		{"PDF version", orPlaceholder(s.PDFVersion)},
		{"Creation date", s.CreatedAt},
	}
	if !s.GeneratedAt.IsZero() {
		rows = append(rows, []string{"Generated", s.GeneratedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if s.InputDigest != "" {
		rows = append(rows, []string{"Input digest", "`" + s.InputDigest + "`"})
	}
	if s.OutputPath != "" {
		rows = append(rows, []string{"PDF report", "`" + s.OutputPath + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCounts writes the issue count table, a chart and an alert.
func (w *MarkdownWriter) writeCounts(md *markdown.Markdown, s *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows: [][]string{
			{"Warnings", strconv.Itoa(s.WarningCount)},
			{"Errors", strconv.Itoa(s.ErrorCount)},
			{"Located regions", strconv.Itoa(s.LocatedCount)},
			{"**Total**", "**" + strconv.Itoa(s.TotalIssues()) + "**"},
		},
	})
	md.PlainText("")

	if s.TotalIssues() > 0 {
		w.writePieChart(md, s)
	}
	w.writeAlert(md, s)
}

// writePieChart writes a mermaid pie chart of warnings against errors.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s *model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Issue Distribution"),
		piechart.WithShowData(true),
	)

	if s.WarningCount > 0 {
		chart.LabelAndIntValue("Warnings", uint64(s.WarningCount)) //nolint:gosec // count is never negative
	}
	if s.ErrorCount > 0 {
		chart.LabelAndIntValue("Errors", uint64(s.ErrorCount)) //nolint:gosec // count is never negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert matching the most severe issue kind.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, s *model.Summary) {
	switch {
	case s.ErrorCount > 0:
		md.Cautionf("%d preflight error(s) must be fixed before the document goes to print.", s.ErrorCount)
	case s.WarningCount > 0:
		md.Warningf("%d preflight warning(s) should be reviewed.", s.WarningCount)
	default:
		md.Tip("The document passed preflight without warnings or errors.")
	}
	md.PlainText("")
}

// writeBoxes writes the page box table.
func (w *MarkdownWriter) writeBoxes(md *markdown.Markdown, boxes model.PageBoxes) {
	md.H2("Page Boxes")
	md.PlainText("")

	named := []struct {
		name string
		box  model.Box
	}{
		{"TrimBox", boxes.Trim},
		{"BleedBox", boxes.Bleed},
		{"MediaBox", boxes.Media},
	}

	rows := make([][]string, len(named))
	for i, n := range named {
		origin := model.Placeholder
		if n.box.HasOrigin {
			origin = fmt.Sprintf("%s, %s", formatMM(n.box.MinX), formatMM(n.box.MinY))
		}
		rows[i] = []string{n.name, formatMM(n.box.Width), formatMM(n.box.Height), origin}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Box", "Width (mm)", "Height (mm)", "Origin (mm)"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeIssues writes the table for one issue kind.
func (w *MarkdownWriter) writeIssues(md *markdown.Markdown, kind model.IssueKind, issues []coloredIssue) {
	md.H2(kind.Label())
	md.PlainText("")

	if len(issues) == 0 {
		md.PlainTextf("No %ss reported.", kind)
		md.PlainText("")
		return
	}

	rows := make([][]string, len(issues))
	for i, ci := range issues {
		rows[i] = []string{
			strconv.Itoa(ci.Index),
			"`" + ci.Color.Hex() + "`",
			truncateString(ci.Message, maxMessageLen),
			strconv.Itoa(len(ci.Locations)),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"#", "Color", "Message", "Locations"},
		Rows:   rows,
	})
	md.PlainText("")

	for _, ci := range issues {
		if !ci.HasLocations() {
			continue
		}
		md.Details(fmt.Sprintf("%s %d", kind.Label(), ci.Index), describeLocations(ci))
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by preflightreport*")
}

func describeLocations(ci coloredIssue) string {
	var sb strings.Builder
	sb.WriteString(ci.Message)
	sb.WriteString("\n\n")
	for _, r := range ci.Locations {
		fmt.Fprintf(&sb, "- x %s..%s mm, y %s..%s mm\n",
			formatMM(r.MinX), formatMM(r.MaxX), formatMM(r.MinY), formatMM(r.MaxY))
	}
	return sb.String()
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orPlaceholder(s string) string {
	if s == "" {
		return model.Placeholder
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
