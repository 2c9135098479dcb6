package parser

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/printops/preflightreport/internal/model"
)

const fullReport = `<?xml version="1.0" encoding="UTF-8"?>
<PreflightReport datetime="2024-03-01 10:22:05">
  <PreflightProfile>PDF/X-4 Sheetfed</PreflightProfile>
  <Creator>Adobe InDesign 19.0</Creator>
  <DocumentName>flyer  A5.pdf</DocumentName>
  <PDFVersion major="1" minor="6">1.6</PDFVersion>
  <Inks>
    <Ink>Cyan</Ink>
    <Ink>Magenta</Ink>
    <Ink>Yellow</Ink>
    <Ink>Black</Ink>
  </Inks>
  <PageBoxes>
    <Mediabox width="220" height="300"/>
    <Bleedbox width="210" height="290"/>
    <Trimbox>
      <width>200</width>
      <height>280</height>
    </Trimbox>
  </PageBoxes>
  <Warnings>
    <Message>Image resolution below 300 ppi</Message>
    <Locations>
      <Location minX="10" minY="20" maxX="60" maxY="80"/>
      <Location minX="100" minY="150" maxX="120" maxY="170"/>
    </Locations>
  </Warnings>
  <Warnings>
    <Message>Text smaller than 6 pt</Message>
    <Locations>
      <Location minX="5" minY="5" maxX="15" maxY="8"/>
    </Locations>
  </Warnings>
  <Errors>
    <Message>Font not embedded</Message>
    <Locations/>
  </Errors>
</PreflightReport>`

// TestParseFullReport tests parsing of a complete preflight report.
func TestParseFullReport(t *testing.T) {
	t.Parallel()

	r, err := Parse([]byte(fullReport))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := &model.Report{
		Profile:      "PDF/X-4 Sheetfed",
		Creator:      "Adobe InDesign 19.0",
		DocumentName: "flyer A5.pdf",
		PDFVersion:   "1.6",
		CreatedAt:    "2024-03-01 10:22:05",
		Inks:         []string{"Cyan", "Magenta", "Yellow", "Black"},
		PageBoxes: model.PageBoxes{
			Media: model.Box{Width: 220, Height: 300},
			Bleed: model.Box{Width: 210, Height: 290},
			Trim:  model.Box{Width: 200, Height: 280},
		},
		Warnings: []model.Issue{
			{
				Message: "Image resolution below 300 ppi",
				Locations: []model.Rect{
					{MinX: 10, MinY: 20, MaxX: 60, MaxY: 80},
					{MinX: 100, MinY: 150, MaxX: 120, MaxY: 170},
				},
			},
			{
				Message:   "Text smaller than 6 pt",
				Locations: []model.Rect{{MinX: 5, MinY: 5, MaxX: 15, MaxY: 8}},
			},
		},
		Errors: []model.Issue{
			{Message: "Font not embedded", Locations: []model.Rect{}},
		},
	}

	if diff := cmp.Diff(expected, r); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

// TestParseDefaults tests that absent descriptive fields degrade to placeholders.
func TestParseDefaults(t *testing.T) {
	t.Parallel()

	raw := `<PreflightReport>
  <PageBoxes><Mediabox width="210" height="297"/></PageBoxes>
</PreflightReport>`

	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("metadata uses placeholder", func(t *testing.T) {
		t.Parallel()
		for name, got := range map[string]string{
			"profile":      r.Profile,
			"creator":      r.Creator,
			"documentName": r.DocumentName,
			"createdAt":    r.CreatedAt,
		} {
			if got != model.Placeholder {
				t.Errorf("%s: expected %q, got %q", name, model.Placeholder, got)
			}
		}
	})

	t.Run("pdf version defaults to empty", func(t *testing.T) {
		t.Parallel()
		if r.PDFVersion != "" {
			t.Errorf("expected empty PDF version, got %q", r.PDFVersion)
		}
	})

	t.Run("collections are empty, not nil", func(t *testing.T) {
		t.Parallel()
		if r.Inks == nil || len(r.Inks) != 0 {
			t.Errorf("expected empty inks, got %v", r.Inks)
		}
		if r.Warnings == nil || r.Errors == nil {
			t.Error("expected empty issue slices")
		}
	})

	t.Run("missing boxes copy the media box", func(t *testing.T) {
		t.Parallel()
		media := model.Box{Width: 210, Height: 297}
		if r.PageBoxes.Bleed != media || r.PageBoxes.Trim != media {
			t.Errorf("expected bleed and trim to equal media, got %+v", r.PageBoxes)
		}
	})
}

// TestParseSingletons tests the singleton-versus-sequence normalization.
func TestParseSingletons(t *testing.T) {
	t.Parallel()

	raw := `<PreflightReport>
  <Inks><Ink>Black</Ink></Inks>
  <PageBoxes>
    <Mediabox width="210" height="297"/>
    <Trimbox width="200" height="287"/>
  </PageBoxes>
  <Warnings>
    <Message>Only warning</Message>
    <Locations><Location minX="1" minY="2" maxX="3" maxY="4"/></Locations>
  </Warnings>
  <Errors>
    <Error><Message>First</Message></Error>
    <Error><Message>Second</Message></Error>
  </Errors>
</PreflightReport>`

	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"Black"}, r.Inks); diff != "" {
		t.Errorf("inks mismatch (-want +got):\n%s", diff)
	}
	if len(r.Warnings) != 1 || len(r.Warnings[0].Locations) != 1 {
		t.Fatalf("expected one warning with one location, got %+v", r.Warnings)
	}
	if len(r.Errors) != 2 || r.Errors[1].Message != "Second" {
		t.Errorf("expected container children as errors, got %+v", r.Errors)
	}
	if r.PageBoxes.Bleed != r.PageBoxes.Trim {
		t.Errorf("expected missing bleed to copy trim, got %+v", r.PageBoxes.Bleed)
	}
}

// TestParseMergedFields tests that attributes and child text share one namespace.
func TestParseMergedFields(t *testing.T) {
	t.Parallel()

	raw := `<PreflightReport Creator="Attr Creator">
  <Creator>Child Creator</Creator>
  <documentname>lower.pdf</documentname>
  <PageBoxes>
    <Mediabox><WIDTH>215,9</WIDTH><height>279.4</height><minX>0</minX><minY>0</minY></Mediabox>
  </PageBoxes>
</PreflightReport>`

	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.Creator != "Attr Creator" {
		t.Errorf("expected attribute to win, got %q", r.Creator)
	}
	if r.DocumentName != "lower.pdf" {
		t.Errorf("expected case-insensitive lookup, got %q", r.DocumentName)
	}
	media := r.PageBoxes.Media
	if media.Width != 215.9 || media.Height != 279.4 {
		t.Errorf("unexpected media size %vx%v", media.Width, media.Height)
	}
	if !media.HasOrigin {
		t.Error("expected explicit origin to be recorded")
	}
}

// TestParseDropsBrokenLocations tests that malformed locations are skipped.
func TestParseDropsBrokenLocations(t *testing.T) {
	t.Parallel()

	raw := `<PreflightReport>
  <PageBoxes><Mediabox width="210" height="297"/></PageBoxes>
  <Warnings>
    <Message>Mixed locations</Message>
    <Locations>
      <Location minX="1" minY="1" maxX="2"/>
      <Location minX="a" minY="1" maxX="2" maxY="2"/>
      <Location minX="9" minY="1" maxX="2" maxY="2"/>
      <Location minX="1" minY="1" maxX="1" maxY="1"/>
    </Locations>
  </Warnings>
</PreflightReport>`

	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []model.Rect{{MinX: 1, MinY: 1, MaxX: 1, MaxY: 1}}
	if diff := cmp.Diff(expected, r.Warnings[0].Locations); diff != "" {
		t.Errorf("locations mismatch (-want +got):\n%s", diff)
	}
}

// TestParseWrappedRoot tests that a report nested in another element is found.
func TestParseWrappedRoot(t *testing.T) {
	t.Parallel()

	raw := `<Envelope><Body><PreflightReport>
  <DocumentName>wrapped.pdf</DocumentName>
  <PageBoxes><Mediabox width="100" height="100"/></PageBoxes>
</PreflightReport></Body></Envelope>`

	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DocumentName != "wrapped.pdf" {
		t.Errorf("expected wrapped.pdf, got %q", r.DocumentName)
	}
}

// TestParseErrors tests the fatal failure classes.
func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		expected error
		kind     ErrorKind
	}{
		{"empty input", "", ErrTruncated, Truncated},
		{"whitespace input", "  \n ", ErrTruncated, Truncated},
		{"cut inside a tag", `<PreflightReport><PageBoxes`, ErrTruncated, Truncated},
		{"not xml", "%PDF-1.7 binary payload", ErrTruncated, Truncated},
		{"missing page boxes", `<PreflightReport><Creator>x</Creator></PreflightReport>`, ErrMalformed, Malformed},
		{"empty page boxes", `<PreflightReport><PageBoxes/></PreflightReport>`, ErrMalformed, Malformed},
		{"unreadable width", `<PreflightReport><PageBoxes><Mediabox width="wide" height="1"/></PageBoxes></PreflightReport>`, ErrMalformed, Malformed},
		{"missing height", `<PreflightReport><PageBoxes><Trimbox width="10"/></PageBoxes></PreflightReport>`, ErrMalformed, Malformed},
		{"negative size", `<PreflightReport><PageBoxes><Mediabox width="-1" height="1"/></PageBoxes></PreflightReport>`, ErrMalformed, Malformed},
		{"other document", `<Invoice><Total>3</Total></Invoice>`, ErrMalformed, Malformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, err := Parse([]byte(tt.raw))
			if err == nil {
				t.Fatalf("expected error, got report %+v", r)
			}
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}

			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if pe.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, pe.Kind)
			}
		})
	}
}

// TestParseZeroWidthMedia tests that degenerate boxes are legal at parse time.
func TestParseZeroWidthMedia(t *testing.T) {
	t.Parallel()

	raw := `<PreflightReport><PageBoxes><Mediabox width="0" height="297"/></PageBoxes></PreflightReport>`

	r, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.PageBoxes.Media.IsDegenerate() {
		t.Error("expected degenerate media box")
	}
}

// TestParseErrorMessage tests the error text.
func TestParseErrorMessage(t *testing.T) {
	t.Parallel()

	err := malformed("missing %s", "PageBoxes")
	if err.Error() != "malformed preflight report: missing PageBoxes" {
		t.Errorf("unexpected message %q", err.Error())
	}

	cause := errors.New("XML syntax error")
	err = truncated("cannot decode XML", cause)
	if !errors.Is(err, cause) {
		t.Error("expected the decoder error to be wrapped")
	}
	if err.Error() != "truncated preflight report: cannot decode XML: XML syntax error" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
