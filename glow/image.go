package glow

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
)

// clamp01 squeezes a channel into [0, 1]. The comparison is written so
// NaN falls through to 0: degenerate fragments come out black instead of
// whatever a float-to-uint8 conversion of NaN would produce.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Image converts the buffer to an 8-bit image, clamping each channel to
// [0, 1]. Row 0 of the buffer is the top row of the image.
func (b *ColorBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := b.Pixels[y*b.Width+x]
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(255 * clamp01(c[0])),
				G: uint8(255 * clamp01(c[1])),
				B: uint8(255 * clamp01(c[2])),
				A: uint8(255 * clamp01(c[3])),
			})
		}
	}
	return img
}

// Encode writes img to w in the named format, e.g. "png" or "jpeg".
func Encode(w io.Writer, img image.Image, format string) error {
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("unsupported image format %q: %w", format, err)
	}
	return imaging.Encode(w, img, f)
}
