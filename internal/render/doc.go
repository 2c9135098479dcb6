// Package render composes the two-page preflight report PDF.
//
// Page 1 lists the document metadata, the page boxes and every warning and
// error next to a colored marker. Page 2 shows the preview of the analysed
// page with the page box outlines and the issue locations painted over it in
// the same colors. Drawing goes through the Canvas interface; PDFCanvas is
// the production implementation on top of github.com/go-pdf/fpdf.
package render
