package parser

import (
	"strings"

	"github.com/beevik/etree"

	"github.com/printops/preflightreport/internal/model"
)

// Element and field names of the preflight export.
const (
	rootTag      = "PreflightReport"
	pageBoxesTag = "PageBoxes"
	mediaBoxTag  = "Mediabox"
	bleedBoxTag  = "Bleedbox"
	trimBoxTag   = "Trimbox"
	warningsTag  = "Warnings"
	errorsTag    = "Errors"
	messageTag   = "Message"
	locationsTag = "Locations"
	locationTag  = "Location"
	inksTag      = "Inks"
	inkTag       = "Ink"
)

// Parse decodes a raw preflight report into a model.Report.
//
// It returns a *ParseError wrapping ErrTruncated when raw is not a complete
// XML document, and one wrapping ErrMalformed when no page box geometry can
// be recovered. Every other gap in the input is filled with a default.
func Parse(raw []byte) (*model.Report, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, truncated("empty input", nil)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, truncated("cannot decode XML", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, truncated("no root element", nil)
	}
	if !strings.EqualFold(root.Tag, rootTag) {
		root = root.FindElement("//" + rootTag)
		if root == nil {
			return nil, malformed("no %s element", rootTag)
		}
	}

	boxes, err := parsePageBoxes(child(root, pageBoxesTag))
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Profile:      text(root, "PreflightProfile", model.Placeholder),
		Creator:      text(root, "Creator", model.Placeholder),
		DocumentName: text(root, "DocumentName", model.Placeholder),
		PDFVersion:   text(root, "PDFVersion", ""),
		CreatedAt:    text(root, "datetime", text(root, "CreationDate", model.Placeholder)),
		Inks:         parseInks(child(root, inksTag)),
		PageBoxes:    boxes,
		Warnings:     parseIssues(root, warningsTag),
		Errors:       parseIssues(root, errorsTag),
	}

	return report, nil
}

// parseInks reads the separation names below <Inks>.
func parseInks(inks *etree.Element) []string {
	names := make([]string, 0)
	for _, ink := range sequence(inks, inkTag) {
		name := normalize(ink.Text())
		if name == "" {
			name = text(ink, "name", "")
		}
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// parsePageBoxes reads the Media, Bleed and Trim boxes. A single missing box
// is replaced by its nearest present neighbour; losing all three, or the
// <PageBoxes> element itself, is fatal.
func parsePageBoxes(el *etree.Element) (model.PageBoxes, error) {
	if el == nil {
		return model.PageBoxes{}, malformed("missing %s", pageBoxesTag)
	}

	media, err := parseBox(el, mediaBoxTag)
	if err != nil {
		return model.PageBoxes{}, err
	}
	bleed, err := parseBox(el, bleedBoxTag)
	if err != nil {
		return model.PageBoxes{}, err
	}
	trim, err := parseBox(el, trimBoxTag)
	if err != nil {
		return model.PageBoxes{}, err
	}

	if media == nil && bleed == nil && trim == nil {
		return model.PageBoxes{}, malformed("no page box in %s", pageBoxesTag)
	}

	return model.PageBoxes{
		Media: *firstBox(media, bleed, trim),
		Bleed: *firstBox(bleed, trim, media),
		Trim:  *firstBox(trim, bleed, media),
	}, nil
}

func firstBox(boxes ...*model.Box) *model.Box {
	for _, b := range boxes {
		if b != nil {
			return b
		}
	}
	return nil
}

// parseBox reads one page box. It returns nil without error when the box is
// absent.
func parseBox(parent *etree.Element, name string) (*model.Box, error) {
	el := child(parent, name)
	if el == nil {
		return nil, nil
	}

	width, ok := number(el, "width")
	if !ok {
		return nil, malformed("%s has no readable width", name)
	}
	height, ok := number(el, "height")
	if !ok {
		return nil, malformed("%s has no readable height", name)
	}
	if width < 0 || height < 0 {
		return nil, malformed("%s has a negative size", name)
	}

	box := &model.Box{Width: width, Height: height}

	minX, okX := number(el, "minX")
	minY, okY := number(el, "minY")
	if okX && okY {
		box.MinX = minX
		box.MinY = minY
		box.HasOrigin = true
	}

	return box, nil
}

// parseIssues collects the issues stored under every element called name.
// An element carrying a <Message> is an issue on its own; any other element
// is treated as a container whose children are issues.
func parseIssues(root *etree.Element, name string) []model.Issue {
	issues := make([]model.Issue, 0)
	for _, el := range sequence(root, name) {
		if _, ok := field(el, messageTag); ok {
			issues = append(issues, parseIssue(el))
			continue
		}
		for _, c := range el.ChildElements() {
			if _, ok := field(c, messageTag); ok {
				issues = append(issues, parseIssue(c))
			}
		}
	}
	return issues
}

func parseIssue(el *etree.Element) model.Issue {
	issue := model.Issue{
		Message:   text(el, messageTag, model.Placeholder),
		Locations: make([]model.Rect, 0),
	}

	locations := sequence(child(el, locationsTag), locationTag)
	locations = append(locations, sequence(el, locationTag)...)

	for _, loc := range locations {
		if r, ok := parseRect(loc); ok {
			issue.Locations = append(issue.Locations, r)
		}
	}

	return issue
}

// parseRect reads a location rectangle. Incomplete or inverted rectangles
// are reported as not ok and skipped by the caller.
func parseRect(el *etree.Element) (model.Rect, bool) {
	var r model.Rect
	var ok bool

	if r.MinX, ok = number(el, "minX"); !ok {
		return model.Rect{}, false
	}
	if r.MinY, ok = number(el, "minY"); !ok {
		return model.Rect{}, false
	}
	if r.MaxX, ok = number(el, "maxX"); !ok {
		return model.Rect{}, false
	}
	if r.MaxY, ok = number(el, "maxY"); !ok {
		return model.Rect{}, false
	}
	if !r.Valid() {
		return model.Rect{}, false
	}

	return r, true
}
