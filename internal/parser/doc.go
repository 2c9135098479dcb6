// Package parser turns a raw preflight report (XML) into a model.Report.
//
// Preflight exports do not agree on where a value lives: the same field can
// appear as an attribute or as the text of a child element, and a list with
// a single entry is written without any list marker. The parser hides both
// quirks behind two helpers, field and sequence, and resolves every optional
// value at this boundary so that no later stage touches the XML tree.
//
// Only two conditions are fatal:
//   - ErrTruncated: the bytes cannot be decoded as XML
//   - ErrMalformed: the page box geometry cannot be recovered
//
// Missing metadata degrades to model.Placeholder, and broken issue
// locations are dropped.
package parser
