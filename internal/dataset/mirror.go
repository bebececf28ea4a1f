package dataset

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// MirrorTree recreates the input root's directory structure for this
// dataset. A Rebased dataset needs an explicit target; a Fixed dataset
// always mirrors into its own root and rejects an explicit target.
func (d *Dataset) MirrorTree(target string) error {
	switch m := d.mode.(type) {
	case Rebased:
		if target == "" {
			return &ConfigurationError{Message: "rebased dataset requires an explicit mirror target"}
		}
	case Fixed:
		if target != "" {
			return &ConfigurationError{Message: "fixed dataset mirrors into its own output root; target must be empty"}
		}
		target = m.Root
	}
	return Mirror(d.root, target, d.logger)
}

// Mirror creates, under target, a directory for every directory below
// inRoot, preserving names and nesting. target itself must already exist.
//
// Existing directories are skipped. Only genuine filesystem failures are
// returned, as *IOError.
func Mirror(inRoot, target string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	inRoot = filepath.Clean(inRoot)
	info, err := os.Stat(target)
	if err != nil {
		return &IOError{Op: "stat", Path: target, Err: err}
	}
	if !info.IsDir() {
		return &IOError{Op: "stat", Path: target, Err: fs.ErrInvalid}
	}

	logger.Debug("mirroring directory structure", "from", inRoot, "to", target)

	return filepath.WalkDir(inRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "walk", Path: path, Err: err}
		}
		if !entry.IsDir() {
			return nil
		}

		dst := filepath.Join(target, rebase(inRoot, path))
		if existing, statErr := os.Stat(dst); statErr == nil {
			if !existing.IsDir() {
				return &IOError{Op: "mkdir", Path: dst, Err: fs.ErrExist}
			}
			logger.Debug("directory already exists", "path", dst)
			return nil
		}

		if err := os.Mkdir(dst, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return &IOError{Op: "mkdir", Path: dst, Err: err}
		}
		return nil
	})
}
