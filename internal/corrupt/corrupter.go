// Package corrupt drives the corruption grid: for every indexed image and
// every (severity, corruption) pair it calls an external Corrupter and
// writes the result to {outdir}/{severity}/{corruption}/{relative path}.
//
// The pixel-level transforms are not implemented here. A Corrupter is any
// collaborator that maps a fixed-size square image to a corrupted image of
// the same size; ExecCorrupter adapts an external command to that contract.
package corrupt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/roach88/facet/internal/imageio"
)

// Corrupter applies one named corruption at one severity. Implementations
// must return an image with the same bounds size as the input and must be
// safe for concurrent use.
type Corrupter interface {
	Corrupt(ctx context.Context, img image.Image, name string, severity int) (image.Image, error)
}

// CorrupterFunc adapts a plain function to the Corrupter interface.
type CorrupterFunc func(ctx context.Context, img image.Image, name string, severity int) (image.Image, error)

// Corrupt calls f.
func (f CorrupterFunc) Corrupt(ctx context.Context, img image.Image, name string, severity int) (image.Image, error) {
	return f(ctx, img, name, severity)
}

// ErrSizeMismatch is returned when a corrupter changes the image size.
var ErrSizeMismatch = errors.New("corrupter changed image size")

// Placeholders substituted into ExecCorrupter command arguments.
const (
	PlaceholderInput    = "{input}"
	PlaceholderOutput   = "{output}"
	PlaceholderName     = "{name}"
	PlaceholderSeverity = "{severity}"
)

// ExecCorrupter runs an external program once per variant. The input image
// is written as PNG to a private temporary directory, the program is
// expected to write its result as PNG to the output path.
//
// Example command:
//
//	python3 corrupt.py --in {input} --out {output} --name {name} --severity {severity}
type ExecCorrupter struct {
	argv    []string
	tempDir string
}

// NewExecCorrupter validates argv and returns an ExecCorrupter. Both
// {input} and {output} must appear somewhere in the arguments.
func NewExecCorrupter(argv []string, tempDir string) (*ExecCorrupter, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, fmt.Errorf("corrupter command is empty")
	}
	joined := strings.Join(argv, " ")
	for _, p := range []string{PlaceholderInput, PlaceholderOutput} {
		if !strings.Contains(joined, p) {
			return nil, fmt.Errorf("corrupter command must reference %s", p)
		}
	}
	return &ExecCorrupter{argv: append([]string(nil), argv...), tempDir: tempDir}, nil
}

// Corrupt implements Corrupter.
func (e *ExecCorrupter) Corrupt(ctx context.Context, img image.Image, name string, severity int) (image.Image, error) {
	dir, err := os.MkdirTemp(e.tempDir, "facet-corrupt-*")
	if err != nil {
		return nil, fmt.Errorf("corrupter temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.png")
	out := filepath.Join(dir, "output.png")
	if err := imageio.Save(in, img); err != nil {
		return nil, err
	}

	replacer := strings.NewReplacer(
		PlaceholderInput, in,
		PlaceholderOutput, out,
		PlaceholderName, name,
		PlaceholderSeverity, strconv.Itoa(severity),
	)
	args := make([]string, len(e.argv))
	for i, a := range e.argv {
		args[i] = replacer.Replace(a)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("corrupter %s/%d: %w: %s", name, severity, err, msg)
		}
		return nil, fmt.Errorf("corrupter %s/%d: %w", name, severity, err)
	}

	result, err := imageio.Load(out)
	if err != nil {
		return nil, fmt.Errorf("corrupter %s/%d output: %w", name, severity, err)
	}
	if result.Bounds().Size() != img.Bounds().Size() {
		return nil, fmt.Errorf("corrupter %s/%d: %w: got %v, want %v",
			name, severity, ErrSizeMismatch, result.Bounds().Size(), img.Bounds().Size())
	}
	return result, nil
}
