// Package model defines the typed preflight data shared by every stage of
// report generation.
//
// This package contains the following main types:
//   - Report: the parsed preflight result (metadata, inks, page boxes, issues)
//   - Box and PageBoxes: the Media/Bleed/Trim boxes in source space
//   - Issue and Rect: a warning or error with its bounding boxes
//   - Summary: a flattened view used by sidecar writers and the history database
//
// Source space is the coordinate system of the preflight tool: millimetres
// with the origin at the bottom-left corner of the page. Conversion to the
// top-left render space lives in the geometry package.
//
// A Report is built once by the parser and is read-only afterwards.
package model
