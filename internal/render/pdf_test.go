package render

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"testing"
	"time"

	"github.com/printops/preflightreport/internal/preview"
)

func jpegPreview(t *testing.T) *preview.Image {
	t.Helper()

	src := image.NewRGBA(image.Rect(0, 0, 44, 60))
	for x := range 44 {
		for y := range 60 {
			src.Set(x, y, color.RGBA{R: 0xEE, G: uint8(y * 4), B: uint8(x * 5), A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("failed to encode preview: %v", err)
	}
	img, err := preview.Load(buf.Bytes())
	if err != nil {
		t.Fatalf("failed to load preview: %v", err)
	}
	return img
}

// TestPDFCanvasRender tests a render through the fpdf canvas.
func TestPDFCanvasRender(t *testing.T) {
	t.Parallel()

	img := jpegPreview(t)

	render := func(clock func() time.Time) ([]byte, *PDFCanvas) {
		var cv *PDFCanvas
		r := New(
			WithClock(clock),
			WithLogger(slog.New(slog.DiscardHandler)),
			WithCanvasFactory(func(info DocumentInfo) Canvas {
				cv = NewPDFCanvas(info)
				return cv
			}),
		)
		out, err := r.Render(sampleReport(), img)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return out, cv
	}

	first, cv := render(fixedClock)
	if !bytes.HasPrefix(first, []byte("%PDF-")) {
		t.Errorf("expected PDF header, got %q", first[:min(len(first), 8)])
	}
	if cv.PageCount() != 2 {
		t.Errorf("expected 2 pages, got %d", cv.PageCount())
	}

	t.Run("same clock gives identical bytes", func(t *testing.T) {
		second, _ := render(fixedClock)
		if !bytes.Equal(first, second) {
			t.Error("expected byte-identical output")
		}
	})

	t.Run("other clock changes the output", func(t *testing.T) {
		later, _ := render(func() time.Time { return fixedTime.Add(time.Hour) })
		if bytes.Equal(first, later) {
			t.Error("expected the timestamp to change the output")
		}
	})
}

// TestPDFCanvasRejectsUnknownImage tests that only embeddable formats are placed.
func TestPDFCanvasRejectsUnknownImage(t *testing.T) {
	t.Parallel()

	cv := NewPDFCanvas(DocumentInfo{CreatedAt: fixedTime})
	cv.AddPage()
	if err := cv.Image(&preview.Image{Format: "bmp"}, pageRect()); err == nil {
		t.Error("expected error for bmp image")
	}
}

// TestToWinAnsi tests the text conversion for the core fonts.
func TestToWinAnsi(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"Créateur", "Cr\xe9ateur"},
		{"… and 3 more", "\x85 and 3 more"},
		{"5 €", "5 \x80"},
		{"日本", "??"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := toWinAnsi(tt.input); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestPointsToMM tests the unit conversion.
func TestPointsToMM(t *testing.T) {
	t.Parallel()

	if got := PointsToMM(2.834666); got != 1 {
		t.Errorf("expected 1 mm, got %v", got)
	}
}
