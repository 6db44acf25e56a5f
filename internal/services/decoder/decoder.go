package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the declared width*height of an image before its
// pixel buffer is allocated.
const DefaultMaxPixels = 50_000_000

var (
	ErrEmptyImage    = errors.New("image data is empty")
	ErrZeroAreaImage = errors.New("image has zero width or height")
	ErrTooManyPixels = errors.New("image dimensions exceed the pixel limit")
)

// Limits bounds the images the pipeline accepts and the size it hands to detectors.
type Limits struct {
	MaxPixels    int64
	MaxDimension int
}

// Decode turns raw bytes into a pixel grid, applying EXIF orientation.
// The returned format is the name the image package registered the decoder under.
// Images declaring more than maxPixels pixels are rejected from their header
// alone; a non-positive maxPixels means DefaultMaxPixels.
func Decode(data []byte, maxPixels int64) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("unrecognised image data: %w", err)
	}

	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return nil, format, fmt.Errorf("%w: %dx%d is more than %d pixels", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("invalid %s image: %w", format, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, format, ErrZeroAreaImage
	}

	return img, format, nil
}

// Downscale fits img inside a maxDimension square, keeping its aspect ratio.
// Images already within bounds, or a non-positive limit, are returned unchanged.
func Downscale(img image.Image, maxDimension int) image.Image {
	if maxDimension <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxDimension && b.Dy() <= maxDimension {
		return img
	}
	return imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
}

// EncodeJPEG writes a JPEG rendition for detectors that consume encoded bytes.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 {
		quality = 95
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}
