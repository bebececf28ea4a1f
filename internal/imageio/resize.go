package imageio

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// DefaultTransformSize is the square resolution the corruption transform
// is defined for.
const DefaultTransformSize = 224

// Resize resamples img to w×h with a Catmull-Rom kernel, which widens its
// support when shrinking and so anti-aliases in both directions.
func Resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
