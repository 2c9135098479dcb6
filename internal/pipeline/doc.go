// Package pipeline turns preflight report files into rendered PDF reports.
//
// Each input is a Job that moves through a fixed sequence of steps:
// load the XML, parse it, find and decode the preview image, render the PDF,
// save it, write the optional Markdown and JSON sidecars, and record the run
// in the history database. A step receives the Job and fills in its part.
//
// The pipeline stops at the first failing step, so the PDF is only written
// after rendering succeeded. BatchProcessor runs independent jobs
// concurrently with errgroup; jobs share no mutable state.
package pipeline
