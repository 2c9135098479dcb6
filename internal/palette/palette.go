// Package palette assigns display colors to preflight issues.
//
// Colors cycle through a fixed palette by issue index, so the marker next to
// an issue on the summary page and its rectangles on the diagram page always
// share one color.
package palette

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/printops/preflightreport/internal/model"
)

// ErrInvalidHex is returned by ParseHex for anything but "#RRGGBB".
var ErrInvalidHex = errors.New("invalid hex color")

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

// Black is returned for lookups in an empty palette.
var Black = Color{}

// ParseHex parses a color written as "#RRGGBB" (the leading '#' is optional).
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseHex is like ParseHex but panics on error. It is meant for
// package-level palette tables.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// RGB returns the components as ints, the form drawing APIs expect.
func (c Color) RGB() (r, g, b int) {
	return int(c.R), int(c.G), int(c.B)
}

// Palette is an ordered list of colors, darkest first.
type Palette []Color

func mustPalette(hex ...string) Palette {
	p := make(Palette, len(hex))
	for i, h := range hex {
		p[i] = MustParseHex(h)
	}
	return p
}

// WarningPalette is the orange progression used for warnings.
var WarningPalette = mustPalette(
	"#FF7E00", "#FF8E20", "#FF9E40", "#FFAE60", "#FFBF80", "#FFCF9F",
	"#FFDFBF", "#FFEFDF", "#FFEFDF", "#FFEFDF", "#FFEFDF",
)

// ErrorPalette is the red progression used for errors.
var ErrorPalette = mustPalette(
	"#E32636", "#C7212F", "#AA1D29", "#E32636", "#E7414F", "#EA5C68",
	"#EE7781", "#F1939B", "#F5AEB4", "#F8C9CD", "#FCE4E6",
)

// ColorFor returns the color of the issue at index. The palette wraps, and
// negative indexes wrap the same way.
func ColorFor(index int, p Palette) Color {
	n := len(p)
	if n == 0 {
		return Black
	}
	i := index % n
	if i < 0 {
		i += n
	}
	return p[i]
}

// ForKind returns the palette for an issue kind.
func ForKind(kind model.IssueKind) Palette {
	if kind == model.KindError {
		return ErrorPalette
	}
	return WarningPalette
}

// Assign returns one color per issue, in order.
func Assign(issues []model.Issue, p Palette) []Color {
	colors := make([]Color, len(issues))
	for i := range issues {
		colors[i] = ColorFor(i, p)
	}
	return colors
}
