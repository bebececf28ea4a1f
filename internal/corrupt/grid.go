package corrupt

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/roach88/facet/internal/catalog"
	"github.com/roach88/facet/internal/dataset"
	"github.com/roach88/facet/internal/imageio"
)

// OutputPath returns {outdir}/{severity}/{corruption}/{rel}. Because
// corruption names are single path segments and rel is unique per record,
// distinct (record, severity, corruption) triples never collide.
func OutputPath(outdir string, v catalog.Variant, rel string) string {
	return filepath.Join(outdir, strconv.Itoa(v.Severity), v.Corruption, rel)
}

// VariantRoot returns the directory hosting one (severity, corruption) subtree.
func VariantRoot(outdir string, v catalog.Variant) string {
	return filepath.Join(outdir, strconv.Itoa(v.Severity), v.Corruption)
}

// RecordError reports the failure of one image. Other images are unaffected.
type RecordError struct {
	SourcePath string
	Variant    *catalog.Variant // nil when the failure precedes any variant
	Err        error
}

func (e *RecordError) Error() string {
	if e.Variant != nil {
		return fmt.Sprintf("record %s (%s): %v", e.SourcePath, e.Variant, e.Err)
	}
	return fmt.Sprintf("record %s: %v", e.SourcePath, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Observer is notified after every variant file is written.
type Observer interface {
	VariantWritten(ctx context.Context, rec dataset.ImageRecord, v catalog.Variant, path string) error
}

// GridOption configures a Grid.
type GridOption func(*Grid)

// WithTransformSize overrides the square size images are resized to before
// corruption.
func WithTransformSize(size int) GridOption {
	return func(g *Grid) {
		if size > 0 {
			g.transformSize = size
		}
	}
}

// WithLogger sets the grid logger.
func WithLogger(logger *slog.Logger) GridOption {
	return func(g *Grid) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithObserver registers an observer for written variants.
func WithObserver(o Observer) GridOption {
	return func(g *Grid) {
		g.observer = o
	}
}

// Grid applies every catalog variant to images and writes the results
// under one output root.
type Grid struct {
	outdir        string
	catalog       catalog.Catalog
	corrupter     Corrupter
	transformSize int
	logger        *slog.Logger
	observer      Observer
}

// NewGrid creates a Grid writing under outdir.
func NewGrid(outdir string, cat catalog.Catalog, c Corrupter, opts ...GridOption) (*Grid, error) {
	if outdir == "" {
		return nil, &dataset.ConfigurationError{Message: "output directory is required"}
	}
	if c == nil {
		return nil, &dataset.ConfigurationError{Message: "a corrupter is required"}
	}
	if cat.Len() == 0 {
		return nil, &dataset.ConfigurationError{Message: "catalog is empty"}
	}

	g := &Grid{
		outdir:        outdir,
		catalog:       cat,
		corrupter:     c,
		transformSize: imageio.DefaultTransformSize,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// OutDir returns the grid's output root.
func (g *Grid) OutDir() string {
	return g.outdir
}

// Catalog returns the grid's corruption catalog.
func (g *Grid) Catalog() catalog.Catalog {
	return g.catalog
}

// Prepare creates the output root, every {severity}/{corruption} directory
// and, inside each, a mirror of the dataset's directory tree. It must
// complete before any record is processed. ds must be Rebased.
//
// Prepare is idempotent, so a resumed run can call it again.
func (g *Grid) Prepare(ds *dataset.Dataset) error {
	if _, ok := ds.Mode().(dataset.Rebased); !ok {
		return &dataset.ConfigurationError{Message: "corruption grid requires a rebased dataset"}
	}

	g.logger.Info("creating corruption data folders", "outdir", g.outdir)
	if err := os.MkdirAll(g.outdir, 0o755); err != nil {
		return &dataset.IOError{Op: "mkdir", Path: g.outdir, Err: err}
	}

	for _, v := range g.catalog.Variants() {
		root := VariantRoot(g.outdir, v)
		if err := os.MkdirAll(root, 0o755); err != nil {
			return &dataset.IOError{Op: "mkdir", Path: root, Err: err}
		}
		if err := ds.MirrorTree(root); err != nil {
			return err
		}
	}
	return nil
}

// ProcessRecord writes every variant of one image and returns how many
// files were written. The image is resized to the transform size once,
// corrupted per variant and resized back to its original dimensions.
//
// Processing stops at the first failing variant; files already written
// stay in place.
func (g *Grid) ProcessRecord(ctx context.Context, rec dataset.ImageRecord) (int, error) {
	img, err := imageio.Load(rec.SourcePath)
	if err != nil {
		return 0, &RecordError{SourcePath: rec.SourcePath, Err: err}
	}
	g.logger.Debug("retrieved image", "path", rec.SourcePath)

	b := img.Bounds()
	square := imageio.Resize(img, g.transformSize, g.transformSize)

	written := 0
	for _, v := range g.catalog.Variants() {
		if err := ctx.Err(); err != nil {
			return written, &RecordError{SourcePath: rec.SourcePath, Variant: &v, Err: err}
		}

		corrupted, err := g.corrupter.Corrupt(ctx, square, v.Corruption, v.Severity)
		if err != nil {
			return written, &RecordError{SourcePath: rec.SourcePath, Variant: &v, Err: err}
		}
		if corrupted.Bounds().Size() != square.Bounds().Size() {
			return written, &RecordError{SourcePath: rec.SourcePath, Variant: &v, Err: ErrSizeMismatch}
		}

		out := OutputPath(g.outdir, v, rec.RelativePath)
		if err := imageio.Save(out, resizeTo(corrupted, b)); err != nil {
			return written, &RecordError{SourcePath: rec.SourcePath, Variant: &v, Err: err}
		}
		written++
		g.logger.Debug("saved image", "path", out)

		if g.observer != nil {
			if err := g.observer.VariantWritten(ctx, rec, v, out); err != nil {
				g.logger.Warn("variant observer failed", "path", out, "error", err)
			}
		}
	}
	return written, nil
}

func resizeTo(img image.Image, b image.Rectangle) *image.RGBA {
	return imageio.Resize(img, b.Dx(), b.Dy())
}

// IsRecordError returns true if err is or wraps a RecordError.
func IsRecordError(err error) bool {
	var re *RecordError
	return errors.As(err, &re)
}
