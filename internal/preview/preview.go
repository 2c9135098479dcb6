package preview

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"

	exif "github.com/dsoprea/go-exif/v3"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

// Sentinel errors for preview loading.
var (
	// ErrEmpty is returned for a zero-length preview.
	ErrEmpty = errors.New("empty preview image")

	// ErrUnsupportedFormat is returned when the bytes are not a known raster format.
	ErrUnsupportedFormat = errors.New("unsupported preview format")
)

// OrientationNormal is the EXIF orientation of an upright image.
const OrientationNormal = 1

// passthrough lists the formats the PDF writer embeds directly.
var passthrough = map[string]string{
	"jpeg": "JPG",
	"png":  "PNG",
	"gif":  "GIF",
}

// Image is a decoded preview ready to be embedded.
type Image struct {
	// Data holds the encoded bytes, converted to PNG when needed.
	Data []byte

	// Format is the format of Data: "jpeg", "png" or "gif".
	Format string

	// SourceFormat is the format the preview was supplied in.
	SourceFormat string

	// Width and Height are the pixel dimensions.
	Width  int
	Height int

	// Orientation is the EXIF orientation tag, 1 when absent.
	Orientation int
}

// ImageType returns the image type name the PDF writer expects.
func (i *Image) ImageType() string {
	return passthrough[i.Format]
}

// AspectRatio returns height divided by width, or 0 for an empty image.
func (i *Image) AspectRatio() float64 {
	if i.Width == 0 {
		return 0
	}
	return float64(i.Height) / float64(i.Width)
}

// Rotated reports whether the EXIF orientation asks for a rotation or flip.
func (i *Image) Rotated() bool {
	return i.Orientation != OrientationNormal
}

// Load decodes a preview image.
func Load(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}

	img := &Image{
		Data:         data,
		Format:       format,
		SourceFormat: format,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Orientation:  orientation(data),
	}

	if _, ok := passthrough[format]; ok {
		return img, nil
	}

	converted, err := toPNG(data)
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s preview: %w", format, err)
	}
	img.Data = converted
	img.Format = "png"

	return img, nil
}

func toPNG(data []byte) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// orientation reads the EXIF orientation tag. Images without EXIF data, or
// with an unreadable tag, count as upright.
func orientation(data []byte) int {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return OrientationNormal
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return OrientationNormal
	}

	for _, entry := range entries {
		if entry.TagName != "Orientation" {
			continue
		}
		if v, ok := entry.Value.([]uint16); ok && len(v) > 0 && v[0] >= 1 && v[0] <= 8 {
			return int(v[0])
		}
	}
	return OrientationNormal
}
