package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/printops/preflightreport/internal/geometry"
	"github.com/printops/preflightreport/internal/palette"
	"github.com/printops/preflightreport/internal/preview"
)

// fontFamily is the core font used for all text.
const fontFamily = "Times"

// pointsPerMM converts between PostScript points and millimetres.
const pointsPerMM = 2.834666

// PointsToMM converts a length in points to millimetres.
func PointsToMM(pt float64) float64 {
	return pt / pointsPerMM
}

// lineSpacing is the height of a text cell relative to the font size.
const lineSpacing = 1.2

// PDFCanvas draws on an A4 portrait fpdf document.
type PDFCanvas struct {
	pdf      *fpdf.Fpdf
	fontSize float64
	images   int
}

// NewPDFCanvas returns a canvas on a new A4 document with 10 mm margins and
// automatic page breaks disabled.
func NewPDFCanvas(info DocumentInfo) *PDFCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(geometry.PageMarginMM, geometry.PageMarginMM, geometry.PageMarginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(info.CreatedAt)
	pdf.SetModificationDate(info.CreatedAt)
	pdf.SetCreator("preflightreport", true)
	if info.Title != "" {
		pdf.SetTitle(info.Title, true)
	}
	if info.Subject != "" {
		pdf.SetSubject(info.Subject, true)
	}
	if info.Author != "" {
		pdf.SetAuthor(info.Author, true)
	}
	pdf.SetFont(fontFamily, "", DefaultFontSize)

	return &PDFCanvas{pdf: pdf, fontSize: DefaultFontSize}
}

// NewPDFCanvasFactory is the CanvasFactory for PDFCanvas.
func NewPDFCanvasFactory() CanvasFactory {
	return func(info DocumentInfo) Canvas {
		return NewPDFCanvas(info)
	}
}

// PageCount returns the number of pages started so far.
func (c *PDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

// AddPage implements Canvas.
func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

// SetFont implements Canvas.
func (c *PDFCanvas) SetFont(style FontStyle, size float64) {
	s := ""
	if style == Bold {
		s = "B"
	}
	c.pdf.SetFont(fontFamily, s, size)
	c.fontSize = size
}

// Text implements Canvas.
func (c *PDFCanvas) Text(x, y, width float64, text string, align Align) {
	c.pdf.SetTextColor(0, 0, 0)
	c.pdf.SetXY(x, y)
	h := PointsToMM(c.fontSize) * lineSpacing
	c.pdf.CellFormat(width, h, toWinAnsi(text), "", 0, alignString(align)+"T", false, 0, "")
}

// Line implements Canvas.
func (c *PDFCanvas) Line(x1, y1, x2, y2, width float64) {
	c.pdf.SetDrawColor(0, 0, 0)
	c.pdf.SetLineWidth(width)
	c.pdf.SetLineCapStyle("butt")
	c.pdf.Line(x1, y1, x2, y2)
}

// StrokeRect implements Canvas.
func (c *PDFCanvas) StrokeRect(r geometry.RenderRect, col palette.Color, width float64) {
	c.pdf.SetDrawColor(col.RGB())
	c.pdf.SetLineWidth(width)
	c.pdf.Rect(r.X, r.Y, r.Width, r.Height, "D")
}

// FillRect implements Canvas.
func (c *PDFCanvas) FillRect(r geometry.RenderRect, col palette.Color, alpha, width float64) {
	c.pdf.SetDrawColor(col.RGB())
	c.pdf.SetFillColor(col.RGB())
	c.pdf.SetLineWidth(width)
	c.pdf.SetAlpha(alpha, "Normal")
	c.pdf.Rect(r.X, r.Y, r.Width, r.Height, "FD")
	c.pdf.SetAlpha(1, "Normal")
}

// Image implements Canvas.
func (c *PDFCanvas) Image(img *preview.Image, r geometry.RenderRect) error {
	if img.ImageType() == "" {
		return fmt.Errorf("cannot embed %s image", img.Format)
	}

	c.images++
	name := fmt.Sprintf("preview-%d", c.images)
	opts := fpdf.ImageOptions{ImageType: img.ImageType(), ReadDpi: false}

	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
	if c.pdf.Err() {
		return fmt.Errorf("failed to register preview: %w", c.pdf.Error())
	}
	c.pdf.ImageOptions(name, r.X, r.Y, r.Width, r.Height, false, opts, 0, "")
	if c.pdf.Err() {
		return fmt.Errorf("failed to place preview: %w", c.pdf.Error())
	}
	return nil
}

// Output implements Canvas.
func (c *PDFCanvas) Output(w io.Writer) error {
	if c.pdf.Err() {
		return c.pdf.Error()
	}
	return c.pdf.Output(w)
}

func alignString(a Align) string {
	switch a {
	case AlignCenter:
		return "C"
	case AlignRight:
		return "R"
	default:
		return "L"
	}
}

// toWinAnsi converts UTF-8 text to the Windows-1252 bytes the core fonts
// are encoded with. Runes outside the code page become '?'.
func toWinAnsi(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
