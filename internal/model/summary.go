package model

import "time"

// Summary is a flattened view of a Report together with facts about the
// generation run. It is what the JSON and Markdown sidecars and the history
// database store.
type Summary struct {
	// JobName is the base name of the job (input file without extension).
	JobName string `json:"job_name"`

	DocumentName string `json:"document_name"`
	Profile      string `json:"profile"`
	Creator      string `json:"creator"`
	PDFVersion   string `json:"pdf_version"`
	CreatedAt    string `json:"created_at"`
	Inks         string `json:"inks"`

	// WarningCount and ErrorCount are the sizes of the issue collections.
	WarningCount int `json:"warning_count"`
	ErrorCount   int `json:"error_count"`

	// LocatedCount is the number of issue regions drawn on the diagram.
	LocatedCount int `json:"located_count"`

	// Warnings and Errors hold the issue messages in report order.
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`

	// GeneratedAt is the timestamp embedded in the rendered report.
	GeneratedAt time.Time `json:"generated_at"`

	// InputDigest identifies the raw preflight bytes the report was built from.
	InputDigest string `json:"input_digest,omitempty"`

	// OutputPath is where the PDF report was written.
	OutputPath string `json:"output_path,omitempty"`
}

// NewSummary builds a Summary from a parsed report.
// Run-specific fields (JobName, GeneratedAt, InputDigest, OutputPath) are
// left for the caller to fill in.
func NewSummary(r *Report) *Summary {
	s := &Summary{
		DocumentName: r.DocumentName,
		Profile:      r.Profile,
		Creator:      r.Creator,
		PDFVersion:   r.PDFVersion,
		CreatedAt:    r.CreatedAt,
		Inks:         r.InkSummary(),
		WarningCount: len(r.Warnings),
		ErrorCount:   len(r.Errors),
	}

	for _, w := range r.Warnings {
		s.Warnings = append(s.Warnings, w.Message)
		s.LocatedCount += len(w.Locations)
	}
	for _, e := range r.Errors {
		s.Errors = append(s.Errors, e.Message)
		s.LocatedCount += len(e.Locations)
	}

	return s
}

// TotalIssues returns the number of warnings and errors.
func (s *Summary) TotalIssues() int {
	return s.WarningCount + s.ErrorCount
}

// HasErrors reports whether the run recorded any preflight error.
func (s *Summary) HasErrors() bool {
	return s.ErrorCount > 0
}
