package report

import (
	"encoding/json"
	"io"

	"github.com/printops/preflightreport/internal/model"
)

// JSONWriter outputs reports in JSON format for tool integration.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string

	// version is the preflightreport version recorded in full reports.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion records the tool version in full reports.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// JSONIssue is an issue as written to the JSON sidecar.
type JSONIssue struct {
	Kind      string       `json:"kind"`
	Index     int          `json:"index"`
	Color     string       `json:"color"`
	Message   string       `json:"message"`
	Locations []model.Rect `json:"locations"`
}

// JSONReport is the document written by JSONWriter.Write.
type JSONReport struct {
	Version  string         `json:"version,omitempty"`
	Summary  *model.Summary `json:"summary"`
	Metadata JSONMetadata   `json:"metadata"`
	Issues   []JSONIssue    `json:"issues"`
}

// JSONMetadata holds the descriptive part of a report.
type JSONMetadata struct {
	Inks      []string        `json:"inks"`
	PageBoxes model.PageBoxes `json:"page_boxes"`
}

// NewJSONReport builds the JSON document for a report.
func NewJSONReport(report *model.Report, summary *model.Summary, version string) *JSONReport {
	out := &JSONReport{
		Version: version,
		Summary: summaryFor(report, summary),
		Metadata: JSONMetadata{
			Inks:      report.Inks,
			PageBoxes: report.PageBoxes,
		},
		Issues: make([]JSONIssue, 0, report.IssueCount()),
	}
	for _, kind := range model.Kinds {
		for _, ci := range coloredIssues(report, kind) {
			locations := ci.Locations
			if locations == nil {
				locations = []model.Rect{}
			}
			out.Issues = append(out.Issues, JSONIssue{
				Kind:      kind.String(),
				Index:     ci.Index,
				Color:     ci.Color.Hex(),
				Message:   ci.Message,
				Locations: locations,
			})
		}
	}
	return out
}

// Write outputs the full report in JSON format.
func (w *JSONWriter) Write(report *model.Report, summary *model.Summary) (int, error) {
	return w.writeJSON(NewJSONReport(report, summary, w.version))
}

// WriteSummary outputs only the summary in JSON format.
func (w *JSONWriter) WriteSummary(summary *model.Summary) (int, error) {
	return w.writeJSON(summary)
}

// WriteValue outputs any JSON-serializable value with the writer's
// formatting. The history command uses it for run listings.
func (w *JSONWriter) WriteValue(v any) (int, error) {
	return w.writeJSON(v)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}
