package geometry

import "github.com/printops/preflightreport/internal/model"

// Project maps an issue rectangle into render space.
//
// Issue locations are bottom-left-origin coordinates relative to the trim
// box. The vertical axis is flipped against the media height, the rectangle
// is moved by the trim offset, scaled by the geometry's ratio and shifted by
// the page margin. Zero-area rectangles are returned as is.
func Project(r model.Rect, g PageGeometry) (RenderRect, error) {
	if !g.validRatio() {
		return RenderRect{}, &GeometryError{MediaWidth: g.Media.Width, Err: ErrDegenerateMedia}
	}

	trim := g.Trim
	mediaHeight := g.Media.Height
	trimBottom := mediaHeight - trim.OffsetY - trim.Height

	x := r.MinX + trim.OffsetX
	y := (mediaHeight - r.MaxY) - trimBottom

	return RenderRect{
		X:      PageMarginMM + x*g.ScaleRatio,
		Y:      PageMarginMM + y*g.ScaleRatio,
		Width:  r.Width() * g.ScaleRatio,
		Height: r.Height() * g.ScaleRatio,
	}, nil
}

// ProjectAll projects every rectangle of rs, preserving order.
func ProjectAll(rs []model.Rect, g PageGeometry) ([]RenderRect, error) {
	out := make([]RenderRect, 0, len(rs))
	for _, r := range rs {
		rr, err := Project(r, g)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	return out, nil
}
