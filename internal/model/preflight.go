package model

import (
	"strconv"
	"strings"
)

// Placeholder is the value shown for descriptive fields that the preflight
// result does not carry.
const Placeholder = "-"

// Report is the typed preflight result for one analysed document.
// Every optional field is resolved by the parser; downstream stages never
// see empty descriptive values except PDFVersion, which defaults to "".
type Report struct {
	// Profile is the name of the preflight profile that produced the result.
	Profile string `json:"profile"`

	// Creator is the application that created the analysed document.
	Creator string `json:"creator"`

	// DocumentName is the file name of the analysed document.
	DocumentName string `json:"document_name"`

	// PDFVersion is the PDF version of the analysed document.
	PDFVersion string `json:"pdf_version"`

	// CreatedAt is the creation date as reported by the preflight tool.
	// It is kept verbatim; the tool's date format is not normalized.
	CreatedAt string `json:"created_at"`

	// Inks lists the separations used in the document, in report order.
	Inks []string `json:"inks"`

	// PageBoxes holds the Media, Bleed and Trim boxes.
	PageBoxes PageBoxes `json:"page_boxes"`

	// Warnings and Errors are independent, ordered issue collections.
	Warnings []Issue `json:"warnings"`
	Errors   []Issue `json:"errors"`
}

// InkSummary formats the ink list as "(<count>) <name1>,<name2>".
// It returns Placeholder when the document declares no inks.
func (r *Report) InkSummary() string {
	if len(r.Inks) == 0 {
		return Placeholder
	}
	return "(" + strconv.Itoa(len(r.Inks)) + ") " + strings.Join(r.Inks, ",")
}

// IssueCount returns the number of warnings and errors combined.
func (r *Report) IssueCount() int {
	return len(r.Warnings) + len(r.Errors)
}

// IssuesOf returns the issue collection for the given kind.
func (r *Report) IssuesOf(kind IssueKind) []Issue {
	if kind == KindError {
		return r.Errors
	}
	return r.Warnings
}

// HasIssues reports whether the report carries any warning or error.
func (r *Report) HasIssues() bool {
	return r.IssueCount() > 0
}

// Box is a page box in source space, in millimetres.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`

	// HasOrigin is true when MinX and MinY were present in the input.
	// Boxes without an explicit origin are assumed to be centered on the
	// media box.
	HasOrigin bool `json:"has_origin"`
}

// IsDegenerate reports whether the box has no area.
func (b Box) IsDegenerate() bool {
	return b.Width == 0 || b.Height == 0
}

// PageBoxes groups the three nested page boxes of a document.
// Trim is contained in Bleed, which is contained in Media.
type PageBoxes struct {
	Media Box `json:"media"`
	Bleed Box `json:"bleed"`
	Trim  Box `json:"trim"`
}

// Rect is an axis-aligned rectangle in source space, in millimetres.
// MaxX >= MinX and MaxY >= MinY.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() float64 {
	return r.MaxX - r.MinX
}

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() float64 {
	return r.MaxY - r.MinY
}

// Valid reports whether the rectangle has a non-inverted extent.
func (r Rect) Valid() bool {
	return r.MaxX >= r.MinX && r.MaxY >= r.MinY
}
