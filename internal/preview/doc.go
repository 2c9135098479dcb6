// Package preview decodes the raster preview of an analysed page.
//
// The diagram page embeds the preview through the PDF writer, which only
// understands JPEG, PNG and GIF. Load accepts those as they are and converts
// BMP, TIFF and WebP previews to PNG. The EXIF orientation of JPEG previews
// is recorded so callers can warn about rotated scans.
package preview
