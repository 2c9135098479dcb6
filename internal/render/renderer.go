package render

import (
	"bytes"
	"errors"
	"log/slog"
	"time"

	"github.com/printops/preflightreport/internal/geometry"
	"github.com/printops/preflightreport/internal/model"
	"github.com/printops/preflightreport/internal/palette"
	"github.com/printops/preflightreport/internal/preview"
)

// pageCount is the fixed number of pages of a report.
const pageCount = 2

// TimestampLayout is the format of the generation time in the footer.
const TimestampLayout = "02/01/2006 15:04:05"

// Outline colors of the page boxes on the diagram page.
var (
	mediaColor = palette.Color{}
	bleedColor = palette.Color{B: 0xFF}
	trimColor  = palette.Color{G: 0x80}
)

// regionAlpha is the fill opacity of issue regions.
const regionAlpha = 0.5

// ErrNilReport is returned when Render is called without a report.
var ErrNilReport = errors.New("nil preflight report")

// Renderer composes preflight reports. A Renderer holds no per-report state
// and may be used from several goroutines.
type Renderer struct {
	clock          func() time.Time
	newCanvas      CanvasFactory
	logger         *slog.Logger
	forceCentering bool
	author         string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the source of the generation time. A fixed clock makes
// repeated renders byte-identical.
func WithClock(clock func() time.Time) Option {
	return func(r *Renderer) {
		r.clock = clock
	}
}

// WithCanvasFactory replaces the PDF canvas.
func WithCanvasFactory(f CanvasFactory) Option {
	return func(r *Renderer) {
		r.newCanvas = f
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithForceCentering centers bleed and trim on media even when the report
// carries explicit box origins.
func WithForceCentering(force bool) Option {
	return func(r *Renderer) {
		r.forceCentering = force
	}
}

// WithAuthor sets the author recorded in the document information.
func WithAuthor(author string) Option {
	return func(r *Renderer) {
		r.author = author
	}
}

// New creates a Renderer drawing on PDFCanvas with the wall clock.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		clock:     time.Now,
		newCanvas: NewPDFCanvasFactory(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve places the page boxes of m the way Render does.
func (r *Renderer) Resolve(m *model.Report) (geometry.PageGeometry, error) {
	return geometry.Resolve(m.PageBoxes, geometry.WithForceCentering(r.forceCentering))
}

// Render composes the report for m with img as the diagram background and
// returns the PDF bytes. img may be nil, in which case the diagram is drawn
// without a background. On failure a *RenderError is returned and no bytes.
func (r *Renderer) Render(m *model.Report, img *preview.Image) ([]byte, error) {
	if m == nil {
		return nil, &RenderError{Stage: StageGeometry, Err: ErrNilReport}
	}

	var g geometry.PageGeometry
	err := runStage(StageGeometry, func() error {
		var err error
		g, err = r.Resolve(m)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !g.Centered() {
		r.logger.Warn("page boxes are not centered on the media box",
			slog.String("document", m.DocumentName))
	}
	if !g.Nested() {
		r.logger.Warn("page boxes are not nested",
			slog.String("document", m.DocumentName))
	}

	now := r.clock()
	stamp := now.Format(TimestampLayout)
	warningColors := palette.Assign(m.Warnings, palette.ForKind(model.KindWarning))
	errorColors := palette.Assign(m.Errors, palette.ForKind(model.KindError))

	cv := r.newCanvas(DocumentInfo{
		Title:     titleText,
		Subject:   m.DocumentName,
		Author:    r.author,
		CreatedAt: now,
	})

	err = runStage(StageSummary, func() error {
		drawSummary(cv, m, g, warningColors, errorColors, stamp)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = runStage(StageDiagram, func() error {
		return r.drawDiagram(cv, m, g, img, warningColors, errorColors, stamp)
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = runStage(StageOutput, func() error {
		return cv.Output(&buf)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("report composed",
		slog.String("document", m.DocumentName),
		slog.Int("warnings", len(m.Warnings)),
		slog.Int("errors", len(m.Errors)),
		slog.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

func drawSummary(cv Canvas, m *model.Report, g geometry.PageGeometry, warningColors, errorColors []palette.Color, stamp string) {
	cv.AddPage()

	cur := drawTitle(cv)
	cur = drawRows(cv, cur, infoRows(m))
	cur = drawRows(cv, cur.advance(boxGap), boxRows(g))
	cur = drawSeparator(cv, cur.advance(issuesGap))

	warnings := cur
	if len(m.Errors) > 0 {
		// Keep room for the errors header and one entry.
		warnings = cur.reserve(2 * entryStep)
	}
	cur = drawIssues(cv, warnings, model.KindWarning, m.Warnings, warningColors).release()
	drawIssues(cv, cur, model.KindError, m.Errors, errorColors)

	drawFooter(cv, stamp, 1, pageCount)
}

func (r *Renderer) drawDiagram(cv Canvas, m *model.Report, g geometry.PageGeometry, img *preview.Image, warningColors, errorColors []palette.Color, stamp string) error {
	cv.AddPage()

	mediaRect := g.Media.RenderRect(g.ScaleRatio)
	if img != nil {
		if img.Rotated() {
			r.logger.Warn("preview carries an EXIF rotation that is not applied",
				slog.Int("orientation", img.Orientation))
		}
		if err := cv.Image(img, mediaRect); err != nil {
			return err
		}
	} else {
		r.logger.Warn("no preview image, drawing diagram without background",
			slog.String("document", m.DocumentName))
	}

	cv.StrokeRect(mediaRect, mediaColor, outlineWidth)
	cv.StrokeRect(g.Bleed.RenderRect(g.ScaleRatio), bleedColor, outlineWidth)
	cv.StrokeRect(g.Trim.RenderRect(g.ScaleRatio), trimColor, outlineWidth)

	if err := drawRegions(cv, g, m.Warnings, warningColors); err != nil {
		return err
	}
	if err := drawRegions(cv, g, m.Errors, errorColors); err != nil {
		return err
	}

	drawFooter(cv, stamp, 2, pageCount)
	return nil
}

// drawRegions paints every location of every issue in the issue's color.
func drawRegions(cv Canvas, g geometry.PageGeometry, issues []model.Issue, colors []palette.Color) error {
	for i, issue := range issues {
		rects, err := geometry.ProjectAll(issue.Locations, g)
		if err != nil {
			return err
		}
		for _, rect := range rects {
			cv.FillRect(rect, colors[i], regionAlpha, regionWidth)
		}
	}
	return nil
}
