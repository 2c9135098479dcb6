package render

import (
	"fmt"
	"strconv"

	"github.com/printops/preflightreport/internal/geometry"
	"github.com/printops/preflightreport/internal/model"
	"github.com/printops/preflightreport/internal/palette"
)

// Layout constants of the summary page, in millimetres unless noted.
const (
	DefaultFontSize = 10.0 // points
	TitleFontSize   = 18.0 // points

	contentWidth = geometry.DiagramWidthMM
	labelX       = geometry.PageMarginMM
	valueX       = 80.0
	messageX     = 15.0

	titleY      = geometry.PageMarginMM
	titleRuleY  = titleY + 6
	infoY       = 30.0
	rowStep     = 5.0
	boxGap      = 10.0
	issuesGap   = 30.0
	headerGap   = 5.0
	entryStep   = 10.0
	markerSize  = 3.0
	markerAlpha = 0.5

	// FooterY is the position of the footer rule on both pages.
	FooterY      = 270.0
	footerTextY  = FooterY + 2
	contentLimit = FooterY - 5
)

// Stroke widths.
var (
	ruleWidth    = PointsToMM(1)
	outlineWidth = PointsToMM(1)
	regionWidth  = PointsToMM(0.5)
)

// Fixed labels.
const (
	titleText   = "Preflight report"
	overflowFmt = "… and %d more"
)

// cursor is the vertical layout position on the summary page. It is a value:
// each drawing step receives the current cursor and returns the next one.
type cursor struct {
	y     float64
	limit float64
}

func newCursor(y float64) cursor {
	return cursor{y: y, limit: contentLimit}
}

func (c cursor) advance(dy float64) cursor {
	c.y += dy
	return c
}

// reserve returns a cursor whose limit leaves room for h millimetres.
func (c cursor) reserve(h float64) cursor {
	c.limit -= h
	return c
}

// release restores the full page limit.
func (c cursor) release() cursor {
	c.limit = contentLimit
	return c
}

// fits reports whether one row of text can be placed at the cursor.
func (c cursor) fits() bool {
	return c.y+rowStep <= c.limit
}

type row struct {
	label string
	value string
}

// infoRows returns the metadata rows of the summary page.
func infoRows(m *model.Report) []row {
	return []row{
		{"Preflight profile", m.Profile},
		{"Creator", m.Creator},
		{"Separations used in document", m.InkSummary()},
		{"File", m.DocumentName},
		{"PDF version", m.PDFVersion},
		{"Creation date", m.CreatedAt},
	}
}

// boxRows returns the page box rows of the summary page.
func boxRows(g geometry.PageGeometry) []row {
	return []row{
		{"TrimBox", describeBox(g.Trim)},
		{"BleedBox", describeBox(g.Bleed)},
		{"MediaBox", describeBox(g.Media)},
	}
}

// describeBox formats a placed box as "<x> mm <y> mm (Dimension: <w> mm x <h> mm)".
func describeBox(b geometry.PlacedBox) string {
	return fmt.Sprintf("%s mm %s mm (Dimension: %s mm x %s mm)",
		formatMM(b.OffsetX), formatMM(b.OffsetY), formatMM(b.Width), formatMM(b.Height))
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func drawTitle(cv Canvas) cursor {
	cv.SetFont(Regular, TitleFontSize)
	cv.Text(labelX, titleY, contentWidth, titleText, AlignLeft)
	cv.Line(labelX, titleRuleY, labelX+contentWidth, titleRuleY, ruleWidth)
	cv.SetFont(Regular, DefaultFontSize)
	return newCursor(infoY)
}

func drawRows(cv Canvas, cur cursor, rows []row) cursor {
	for _, r := range rows {
		cv.SetFont(Bold, DefaultFontSize)
		cv.Text(labelX, cur.y, valueX-labelX, r.label, AlignLeft)
		cv.SetFont(Regular, DefaultFontSize)
		cv.Text(valueX, cur.y, labelX+contentWidth-valueX, r.value, AlignLeft)
		cur = cur.advance(rowStep)
	}
	return cur
}

func drawSeparator(cv Canvas, cur cursor) cursor {
	cv.Line(labelX, cur.y, labelX+contentWidth, cur.y, ruleWidth)
	return cur.advance(headerGap)
}

// drawIssues lists one kind of issue. When the list would run into the
// footer, the remaining entries collapse into a single overflow line.
func drawIssues(cv Canvas, cur cursor, kind model.IssueKind, issues []model.Issue, colors []palette.Color) cursor {
	if len(issues) == 0 || !cur.fits() {
		return cur
	}

	cv.SetFont(Bold, DefaultFontSize)
	cv.Text(labelX, cur.y, contentWidth, kind.Label()+":", AlignLeft)
	cur = cur.advance(entryStep)
	cv.SetFont(Regular, DefaultFontSize)

	for i, issue := range issues {
		remaining := len(issues) - i
		if !cur.fits() {
			return cur
		}
		if remaining > 1 && !cur.advance(entryStep).fits() {
			cv.Text(messageX, cur.y, labelX+contentWidth-messageX, fmt.Sprintf(overflowFmt, remaining), AlignLeft)
			return cur.advance(entryStep)
		}

		marker := geometry.RenderRect{X: labelX, Y: cur.y, Width: markerSize, Height: markerSize}
		cv.FillRect(marker, colors[i], markerAlpha, regionWidth)
		cv.Text(messageX, cur.y, labelX+contentWidth-messageX, issue.Message, AlignLeft)
		cur = cur.advance(entryStep)
	}
	return cur
}

// drawFooter writes the footer rule, the generation time and the page number.
func drawFooter(cv Canvas, generatedAt string, page, pages int) {
	cv.Line(labelX, FooterY, labelX+contentWidth, FooterY, ruleWidth)
	cv.SetFont(Regular, DefaultFontSize)
	cv.Text(labelX, footerTextY, contentWidth, generatedAt, AlignCenter)
	cv.Text(labelX, footerTextY, contentWidth, fmt.Sprintf("%d/%d", page, pages), AlignRight)
}
