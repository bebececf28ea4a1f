package testutil

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// GradientImage returns a w×h RGBA image with a deterministic colour ramp,
// useful when a test needs pixel content that survives resampling.
func GradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / max(w-1, 1)),
				G: uint8((y * 255) / max(h-1, 1)),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

// WritePNG encodes img as PNG at path, creating parent directories.
func WritePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// WriteFile writes raw content at path, creating parent directories.
func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ImageTree builds a small face-dataset-like tree under root and returns the
// relative paths of the PNG images it wrote. Non-image files and an empty
// directory are included so indexers and mirrors see realistic input.
//
//	root/
//	  top.png
//	  notes.txt
//	  alice/0001.png
//	  alice/0002.png
//	  bob/sessions/a/0001.png
//	  empty/
func ImageTree(t *testing.T, root string) []string {
	t.Helper()
	rels := []string{
		"top.png",
		filepath.Join("alice", "0001.png"),
		filepath.Join("alice", "0002.png"),
		filepath.Join("bob", "sessions", "a", "0001.png"),
	}
	for i, rel := range rels {
		WritePNG(t, filepath.Join(root, rel), GradientImage(8+i, 6+i))
	}
	WriteFile(t, filepath.Join(root, "notes.txt"), []byte("not an image"))
	if err := os.MkdirAll(filepath.Join(root, "empty"), 0o755); err != nil {
		t.Fatalf("mkdir empty: %v", err)
	}
	return rels
}

// TreeDirs lists the directories ImageTree creates, relative to its root.
func TreeDirs() []string {
	return []string{
		"alice",
		"bob",
		filepath.Join("bob", "sessions"),
		filepath.Join("bob", "sessions", "a"),
		"empty",
	}
}
