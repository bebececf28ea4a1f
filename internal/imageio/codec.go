// Package imageio reads and writes face images and performs the resize
// round-trip the corruption transform requires.
//
// Decoding sniffs the file content (PNG, JPEG, BMP and TIFF are registered);
// encoding picks the format from the output path's extension. Every decoded
// image is normalised to an opaque three-channel RGBA buffer, so grayscale
// and paletted inputs are broadcast to colour.
package imageio

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrUnsupportedFormat is returned for images whose format cannot be
// decoded, or whose output extension has no encoder.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// JPEGQuality is the quality used when saving JPEG variants.
const JPEGQuality = 95

// tempPattern names in-progress writes. The suffix is not an image
// extension, so a file stranded by a killed process is never indexed.
const tempPattern = ".facet-*.tmp"

// Load decodes the image at path and returns it as an opaque RGBA buffer
// with its origin at (0, 0).
func Load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("decode %s: %w", path, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return ToRGB(img), nil
}

// ToRGB copies img into a new opaque RGBA buffer. Transparent regions are
// composited over black.
func ToRGB(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Save encodes img at path using the format implied by its extension.
// The file is written to a temporary sibling first and renamed into place,
// so an interrupted run never leaves a truncated image behind.
func Save(path string, img image.Image) error {
	encode, err := encoderFor(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

type encodeFunc func(io.Writer, image.Image) error

func encoderFor(path string) (encodeFunc, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch ext {
	case "png":
		return png.Encode, nil
	case "jpg", "jpeg", "jpe":
		return func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
		}, nil
	case "bmp":
		return bmp.Encode, nil
	case "tif", "tiff":
		return func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
		}, nil
	default:
		return nil, fmt.Errorf("save %s: %w", path, ErrUnsupportedFormat)
	}
}

// CanEncode reports whether Save supports the extension of path.
func CanEncode(path string) bool {
	_, err := encoderFor(path)
	return err == nil
}
