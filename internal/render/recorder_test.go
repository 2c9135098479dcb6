package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/printops/preflightreport/internal/geometry"
	"github.com/printops/preflightreport/internal/palette"
	"github.com/printops/preflightreport/internal/preview"
)

// op is one recorded drawing call.
type op struct {
	Kind  string
	Page  int
	Rect  geometry.RenderRect
	Text  string
	Align Align
	Style FontStyle
	Size  float64
	Color palette.Color
	Alpha float64
	Width float64
}

// recordingCanvas is a Canvas that remembers every call.
type recordingCanvas struct {
	info      DocumentInfo
	ops       []op
	page      int
	style     FontStyle
	size      float64
	imageErr  error
	outputErr error
	panicOn   string
}

func (c *recordingCanvas) record(o op) {
	if c.panicOn != "" && c.panicOn == o.Kind {
		panic("forced " + o.Kind + " failure")
	}
	o.Page = c.page
	c.ops = append(c.ops, o)
}

func (c *recordingCanvas) AddPage() {
	c.page++
	c.record(op{Kind: "page"})
}

func (c *recordingCanvas) SetFont(style FontStyle, size float64) {
	c.style = style
	c.size = size
}

func (c *recordingCanvas) Text(x, y, width float64, text string, align Align) {
	c.record(op{
		Kind:  "text",
		Rect:  geometry.RenderRect{X: x, Y: y, Width: width},
		Text:  text,
		Align: align,
		Style: c.style,
		Size:  c.size,
	})
}

func (c *recordingCanvas) Line(x1, y1, x2, y2, width float64) {
	c.record(op{Kind: "line", Rect: geometry.RenderRect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, Width: width})
}

func (c *recordingCanvas) StrokeRect(r geometry.RenderRect, col palette.Color, width float64) {
	c.record(op{Kind: "stroke", Rect: r, Color: col, Width: width})
}

func (c *recordingCanvas) FillRect(r geometry.RenderRect, col palette.Color, alpha, width float64) {
	c.record(op{Kind: "fill", Rect: r, Color: col, Alpha: alpha, Width: width})
}

func (c *recordingCanvas) Image(img *preview.Image, r geometry.RenderRect) error {
	if c.imageErr != nil {
		return c.imageErr
	}
	c.record(op{Kind: "image", Rect: r, Text: img.Format})
	return nil
}

func (c *recordingCanvas) Output(w io.Writer) error {
	if c.outputErr != nil {
		return c.outputErr
	}
	for _, o := range c.ops {
		if _, err := fmt.Fprintf(w, "%d %s %q %v %v\n", o.Page, o.Kind, o.Text, o.Rect, o.Color); err != nil {
			return err
		}
	}
	return nil
}

// filter returns the recorded ops of a kind on a page.
func (c *recordingCanvas) filter(kind string, page int) []op {
	var out []op
	for _, o := range c.ops {
		if o.Kind == kind && o.Page == page {
			out = append(out, o)
		}
	}
	return out
}

// textsOn returns the text of every text op on a page.
func (c *recordingCanvas) textsOn(page int) []string {
	var out []string
	for _, o := range c.filter("text", page) {
		out = append(out, o.Text)
	}
	return out
}

// findText returns the first text op on a page with the given prefix.
func (c *recordingCanvas) findText(page int, prefix string) (op, bool) {
	for _, o := range c.filter("text", page) {
		if strings.HasPrefix(o.Text, prefix) {
			return o, true
		}
	}
	return op{}, false
}

var errForced = errors.New("forced failure")

// recorderFactory returns a factory handing out c.
func recorderFactory(c *recordingCanvas) CanvasFactory {
	return func(info DocumentInfo) Canvas {
		c.info = info
		return c
	}
}

func pageRect() geometry.RenderRect {
	return geometry.RenderRect{X: 10, Y: 10, Width: 190, Height: 277}
}
