package dataset

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// imageExtensions is the allow-list of image file extensions.
// Matching is case-sensitive and excludes the leading dot.
var imageExtensions = map[string]bool{
	"bmp":  true,
	"jpe":  true,
	"jp2":  true,
	"tiff": true,
	"tif":  true,
	"sr":   true,
	"ras":  true,
	"pbm":  true,
	"pgm":  true,
	"ppm":  true,
	"png":  true,
	"jpeg": true,
	"jpg":  true,
}

// IsImage reports whether name carries an allow-listed image extension.
func IsImage(name string) bool {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return false
	}
	return imageExtensions[name[i+1:]]
}

// OutputMode selects how save paths are derived. It is either Rebased or Fixed.
type OutputMode interface {
	outputMode()
}

// Rebased leaves save paths relative so a caller can prepend its own prefix.
type Rebased struct{}

// Fixed joins every save path onto Root.
type Fixed struct {
	Root string
}

func (Rebased) outputMode() {}
func (Fixed) outputMode()   {}

// ImageRecord is one indexed image.
type ImageRecord struct {
	// SourcePath is the absolute path of the image file.
	SourcePath string `json:"source_path"`
	// RelativePath is the path under the input root. It never starts with a
	// separator and reproduces the source's subdirectory nesting.
	RelativePath string `json:"relative_path"`
}

// Option configures indexing.
type Option func(*Dataset)

// WithLogger sets the logger used for indexing and mirroring diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dataset) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Dataset is the immutable result of indexing an input root.
type Dataset struct {
	root    string
	mode    OutputMode
	records []ImageRecord
	logger  *slog.Logger
}

// Index walks root recursively and records every image file it finds.
//
// Within each directory the image files are recorded first, in lexical
// order, and only then are its subdirectories descended into, also in
// lexical order. The result is deterministic for a fixed filesystem state.
// Symbolic links to directories are not followed.
//
// Returns a ConfigurationError if mode is nil or is a Fixed mode with an
// empty root, and an IOError if root cannot be traversed.
func Index(root string, mode OutputMode, opts ...Option) (*Dataset, error) {
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &IOError{Op: "abs", Path: root, Err: err}
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, &IOError{Op: "stat", Path: absRoot, Err: fs.ErrInvalid}
	}

	d := &Dataset{
		root:   absRoot,
		mode:   mode,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.logger.Info("indexing", "root", absRoot)

	if err := d.walk(absRoot); err != nil {
		return nil, err
	}

	d.logger.Info("indexed", "root", absRoot, "images", len(d.records))
	return d, nil
}

// walk records the image files directly inside dir, then recurses into
// its subdirectories.
func (d *Dataset) walk(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &IOError{Op: "walk", Path: dir, Err: err}
	}

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			subdirs = append(subdirs, path)
			continue
		}
		if !IsImage(entry.Name()) {
			continue
		}
		d.records = append(d.records, ImageRecord{
			SourcePath:   path,
			RelativePath: filepath.Join(rebase(d.root, dir), entry.Name()),
		})
		d.logger.Debug("indexed image", "path", path)
	}

	for _, sub := range subdirs {
		if err := d.walk(sub); err != nil {
			return err
		}
	}
	return nil
}

func validateMode(mode OutputMode) error {
	switch m := mode.(type) {
	case Rebased:
		return nil
	case Fixed:
		if m.Root == "" {
			return &ConfigurationError{Message: "fixed output mode requires an output root"}
		}
		return nil
	case nil:
		return &ConfigurationError{Message: "an output mode (rebased or fixed) is required"}
	default:
		return &ConfigurationError{Message: "unknown output mode"}
	}
}

// rebase strips root plus exactly one separator from dir. A dir equal to
// root yields "".
func rebase(root, dir string) string {
	if dir == root {
		return ""
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.TrimPrefix(dir, prefix)
}

// Root returns the absolute input root.
func (d *Dataset) Root() string {
	return d.root
}

// Mode returns the dataset's output mode.
func (d *Dataset) Mode() OutputMode {
	return d.mode
}

// Len returns the number of indexed images.
func (d *Dataset) Len() int {
	return len(d.records)
}

// Record returns the i-th indexed image.
func (d *Dataset) Record(i int) ImageRecord {
	return d.records[i]
}

// Records returns a copy of all indexed images in traversal order.
func (d *Dataset) Records() []ImageRecord {
	return append([]ImageRecord(nil), d.records...)
}

// SavePath returns the save target for rec under the dataset's mode.
func (d *Dataset) SavePath(rec ImageRecord) string {
	if m, ok := d.mode.(Fixed); ok {
		return filepath.Join(m.Root, rec.RelativePath)
	}
	return rec.RelativePath
}
