package ocr

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"

	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Preprocess decodes a PNG or JPEG, turns it upright according to its EXIF
// orientation, downscales it so the longer side is at most maxDim, rotates it
// counter-clockwise by rotation degrees and re-encodes it as PNG.
func Preprocess(data []byte, rotation, maxDim int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnreadableImage)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if format == "jpeg" {
		switch exifOrientation(data) {
		case 3:
			img = Rotate(img, 180)
		case 6:
			img = Rotate(img, 270)
		case 8:
			img = Rotate(img, 90)
		}
	}
	img = Downscale(img, maxDim)
	if rotation%360 != 0 {
		if rotation%90 != 0 {
			return nil, fmt.Errorf("unsupported rotation %d", rotation)
		}
		img = Rotate(img, rotation)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// exifOrientation returns the EXIF orientation tag, or 1 (upright) when absent.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return v
}

// Downscale shrinks img so that neither side exceeds maxDim, keeping the aspect ratio.
func Downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Rotate turns img counter-clockwise by a multiple of 90 degrees.
func Rotate(img image.Image, degrees int) image.Image {
	degrees = ((degrees % 360) + 360) % 360
	if degrees == 0 {
		return img
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	minX, minY := float64(b.Min.X), float64(b.Min.Y)

	var m f64.Aff3
	var dr image.Rectangle
	switch degrees {
	case 90:
		// (x, y) -> (y, w-x)
		m = f64.Aff3{0, 1, -minY, -1, 0, w + minX}
		dr = image.Rect(0, 0, b.Dy(), b.Dx())
	case 180:
		m = f64.Aff3{-1, 0, w + minX, 0, -1, h + minY}
		dr = image.Rect(0, 0, b.Dx(), b.Dy())
	case 270:
		// (x, y) -> (h-y, x)
		m = f64.Aff3{0, -1, h + minY, 1, 0, -minX}
		dr = image.Rect(0, 0, b.Dy(), b.Dx())
	default:
		return img
	}
	dst := image.NewRGBA(dr)
	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}
