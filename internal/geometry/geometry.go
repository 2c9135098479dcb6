package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/printops/preflightreport/internal/model"
)

// Layout constants of the diagram page.
const (
	// DiagramWidthMM is the width the media box is scaled to on the page.
	DiagramWidthMM = 190.0

	// PageMarginMM is the distance from the page edge to the diagram.
	PageMarginMM = 10.0

	// Epsilon is the tolerance used when comparing placed coordinates.
	Epsilon = 1e-6
)

// ErrDegenerateMedia is returned when the media box has no usable width,
// which leaves the scale ratio undefined.
var ErrDegenerateMedia = errors.New("degenerate media box")

// GeometryError describes a page geometry that cannot be placed.
type GeometryError struct {
	// MediaWidth is the offending media box width.
	MediaWidth float64

	// Err is the sentinel for the failure.
	Err error
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("%v: media width %g", e.Err, e.MediaWidth)
}

// Unwrap returns the sentinel error.
func (e *GeometryError) Unwrap() error {
	return e.Err
}

// PlacedBox is a page box together with the offset of its top-left corner
// from the top-left corner of the media box, in unscaled millimetres.
type PlacedBox struct {
	model.Box
	OffsetX float64
	OffsetY float64
}

// RenderRect is a rectangle in render space: millimetres on the report page,
// top-left origin, scaled and margin-shifted.
type RenderRect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// RenderRect returns the outline of the placed box on the report page.
func (p PlacedBox) RenderRect(scale float64) RenderRect {
	return RenderRect{
		X:      PageMarginMM + p.OffsetX*scale,
		Y:      PageMarginMM + p.OffsetY*scale,
		Width:  p.Width * scale,
		Height: p.Height * scale,
	}
}

// PageGeometry is the resolved placement of the three page boxes.
type PageGeometry struct {
	Media      PlacedBox
	Bleed      PlacedBox
	Trim       PlacedBox
	ScaleRatio float64
}

// Centered reports whether bleed and trim share the centre of the media box.
func (g PageGeometry) Centered() bool {
	for _, b := range []PlacedBox{g.Bleed, g.Trim} {
		if math.Abs(2*b.OffsetX+b.Width-g.Media.Width) > Epsilon {
			return false
		}
		if math.Abs(2*b.OffsetY+b.Height-g.Media.Height) > Epsilon {
			return false
		}
	}
	return true
}

// Nested reports whether trim lies inside bleed and bleed inside media.
func (g PageGeometry) Nested() bool {
	return contains(g.Media, g.Bleed) && contains(g.Bleed, g.Trim)
}

func contains(outer, inner PlacedBox) bool {
	return inner.OffsetX >= outer.OffsetX-Epsilon &&
		inner.OffsetY >= outer.OffsetY-Epsilon &&
		inner.OffsetX+inner.Width <= outer.OffsetX+outer.Width+Epsilon &&
		inner.OffsetY+inner.Height <= outer.OffsetY+outer.Height+Epsilon
}

// validRatio reports whether the geometry can be used for projection.
func (g PageGeometry) validRatio() bool {
	r := g.ScaleRatio
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// resolveOptions holds optional settings for Resolve.
type resolveOptions struct {
	forceCentering bool
}

// ResolveOption configures Resolve.
type ResolveOption func(*resolveOptions)

// WithForceCentering ignores explicit box origins and always derives the
// offsets by centering each box on the media box.
func WithForceCentering(force bool) ResolveOption {
	return func(o *resolveOptions) {
		o.forceCentering = force
	}
}

// Resolve computes the placement of the page boxes and the scale ratio.
//
// Bleed and trim offsets are taken from the explicit origins when both the
// box and the media box carry one. Otherwise each box is centered on media.
// A media width that is zero, negative or not a number fails with a
// *GeometryError wrapping ErrDegenerateMedia.
func Resolve(boxes model.PageBoxes, opts ...ResolveOption) (PageGeometry, error) {
	o := &resolveOptions{}
	for _, opt := range opts {
		opt(o)
	}

	media := boxes.Media
	if !(media.Width > 0) || math.IsInf(media.Width, 0) {
		return PageGeometry{}, &GeometryError{MediaWidth: media.Width, Err: ErrDegenerateMedia}
	}

	return PageGeometry{
		Media:      PlacedBox{Box: media},
		Bleed:      place(boxes.Bleed, media, o.forceCentering),
		Trim:       place(boxes.Trim, media, o.forceCentering),
		ScaleRatio: DiagramWidthMM / media.Width,
	}, nil
}

func place(box, media model.Box, forceCentering bool) PlacedBox {
	if box.HasOrigin && media.HasOrigin && !forceCentering {
		return PlacedBox{
			Box:     box,
			OffsetX: box.MinX - media.MinX,
			OffsetY: (media.MinY + media.Height) - (box.MinY + box.Height),
		}
	}
	return PlacedBox{
		Box:     box,
		OffsetX: (media.Width - box.Width) / 2,
		OffsetY: (media.Height - box.Height) / 2,
	}
}
