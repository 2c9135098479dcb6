package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/unicode/norm"
)

// field returns the value stored under name on el, looking first at the
// attributes and then at the text of a child element. Attributes and child
// elements share one namespace, matching the layout of preflight exports
// where a value may be written either way. Names are compared without case.
func field(el *etree.Element, name string) (string, bool) {
	if el == nil {
		return "", false
	}
	for _, attr := range el.Attr {
		if strings.EqualFold(attr.Key, name) {
			return attr.Value, true
		}
	}
	if child := child(el, name); child != nil {
		return child.Text(), true
	}
	return "", false
}

// child returns the first child element named name, or nil.
func child(el *etree.Element, name string) *etree.Element {
	if el == nil {
		return nil
	}
	for _, c := range el.ChildElements() {
		if strings.EqualFold(c.Tag, name) {
			return c
		}
	}
	return nil
}

// sequence returns every child element of el named name.
// A single child yields a slice of length one and no child an empty slice,
// so callers never deal with the singleton-versus-list shape of the input.
func sequence(el *etree.Element, name string) []*etree.Element {
	if el == nil {
		return nil
	}
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if strings.EqualFold(c.Tag, name) {
			out = append(out, c)
		}
	}
	return out
}

// text returns the normalized string value of a field, or dflt when the
// field is absent or blank.
func text(el *etree.Element, name, dflt string) string {
	v, ok := field(el, name)
	if !ok {
		return dflt
	}
	v = normalize(v)
	if v == "" {
		return dflt
	}
	return v
}

// normalize collapses runs of whitespace and applies Unicode NFC so that
// accented names compare and encode consistently.
func normalize(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}

// number reads a numeric field. Both "." and "," are accepted as decimal
// separators since exports follow the locale of the preflight host.
func number(el *etree.Element, name string) (float64, bool) {
	v, ok := field(el, name)
	if !ok {
		return 0, false
	}
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
