package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
)

// WatermarkMargin is how many pixels the provider's watermark occupies along
// the bottom and right edges of generated images.
const WatermarkMargin = 80

// JPEGQuality used for every artifact written by the service.
const JPEGQuality = 95

// OpenOriented loads an image from disk with EXIF orientation applied, so
// phone photos come out upright before any downstream processing.
func OpenOriented(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageproc: open %s: %w", path, err)
	}
	defer f.Close()
	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imageproc: decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeOriented decodes image bytes with EXIF orientation applied.
func DecodeOriented(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("imageproc: decode: %w", err)
	}
	return img, nil
}

// CropWatermark removes the provider watermark area from the bottom-right by
// trimming WatermarkMargin pixels off the bottom and right edges. Images too
// small to trim are returned unchanged.
func CropWatermark(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= WatermarkMargin || h <= WatermarkMargin {
		return img
	}
	return imaging.Crop(img, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X-WatermarkMargin, bounds.Max.Y-WatermarkMargin))
}

// FitToSize resizes img to exactly width×height without stretching: the image
// is scaled to cover the target box and center-cropped to the target aspect
// ratio using Lanczos resampling.
func FitToSize(img image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("imageproc: invalid target size %dx%d", width, height)
	}
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos), nil
}

// EncodeJPEG renders img as an optimized JPEG. The Go encoder writes no EXIF
// block, so an already-oriented image cannot be double-rotated by viewers.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("imageproc: encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
