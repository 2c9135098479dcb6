package render

import (
	"io"
	"time"

	"github.com/printops/preflightreport/internal/geometry"
	"github.com/printops/preflightreport/internal/palette"
	"github.com/printops/preflightreport/internal/preview"
)

// FontStyle selects the face of the report font.
type FontStyle int

const (
	// Regular is the upright face.
	Regular FontStyle = iota
	// Bold is the bold face.
	Bold
)

// Align is the horizontal alignment of a text cell.
type Align int

const (
	// AlignLeft places text at the left edge of the cell.
	AlignLeft Align = iota
	// AlignCenter centers text in the cell.
	AlignCenter
	// AlignRight places text at the right edge of the cell.
	AlignRight
)

// Canvas is the set of drawing primitives the renderer needs. Coordinates
// are millimetres from the top-left corner of the current page.
type Canvas interface {
	// AddPage starts a new page.
	AddPage()

	// SetFont selects the face and size in points for following text.
	SetFont(style FontStyle, size float64)

	// Text writes black text in a cell of the given width whose top-left
	// corner is at (x, y).
	Text(x, y, width float64, text string, align Align)

	// Line draws a black line of the given width in millimetres.
	Line(x1, y1, x2, y2, width float64)

	// StrokeRect draws the outline of r.
	StrokeRect(r geometry.RenderRect, c palette.Color, width float64)

	// FillRect fills r and strokes its outline in c at the given opacity.
	FillRect(r geometry.RenderRect, c palette.Color, alpha, width float64)

	// Image places a preview image stretched to r.
	Image(img *preview.Image, r geometry.RenderRect) error

	// Output writes the finished document.
	Output(w io.Writer) error
}

// DocumentInfo carries the document-level metadata of a report.
type DocumentInfo struct {
	Title     string
	Subject   string
	Author    string
	CreatedAt time.Time
}

// CanvasFactory creates the canvas for one report.
type CanvasFactory func(info DocumentInfo) Canvas
