// Package store reads and writes VDF files on disk.
//
// Writes never leave a half-written file behind: data goes to a
// temporary file in the target's directory which is then renamed over
// the target, optionally after copying the original to a timestamped
// backup.
package store

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/ossyrian/steamaffinity/internal/vdf"
)

// BackupTimeFormat is the timestamp layout used in backup file names.
const BackupTimeFormat = "20060102_150405"

// Document is a parsed VDF file.
type Document struct {
	Path     string
	Original string   // decoded text as read
	Encoding Encoding // encoding the file was read in
	Root     *vdf.Node
	Mode     fs.FileMode

	baseline string // serialized tree as loaded
}

// Load reads and parses the VDF file at path.
func Load(fsys afero.Fs, path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text, enc, err := DecodeText(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if enc != UTF8 {
		logger.Warn("file is not plain UTF-8, it will be rewritten as UTF-8 without BOM",
			"path", path,
			"encoding", enc,
		)
	}

	p := vdf.NewParser(vdf.WithSource(filepath.Base(path)), vdf.WithLogger(logger))
	root, err := p.Parse(vdf.SplitLines(text))
	if err != nil {
		return nil, err
	}

	logger.Debug("loaded vdf file",
		"path", path,
		"bytes", len(data),
		"top_level_keys", root.Len(),
	)

	return &Document{
		Path:     path,
		Original: text,
		Encoding: enc,
		Root:     root,
		Mode:     info.Mode().Perm(),
		baseline: vdf.Serialize(root),
	}, nil
}

// Render serializes the document tree.
func (d *Document) Render() string {
	return vdf.Serialize(d.Root)
}

// Baseline returns the tree as it was loaded, serialized. Line endings
// and a final newline of the original text do not show up in it, so it is
// what edits should be diffed against.
func (d *Document) Baseline() string {
	return d.baseline
}

// Changed reports whether the tree was modified since Load, or the file
// has to be rewritten as plain UTF-8.
func (d *Document) Changed() bool {
	return d.Encoding != UTF8 || d.Render() != d.baseline
}

// SaveOptions controls Save.
type SaveOptions struct {
	Backup bool
	Now    func() time.Time
}

// SaveResult describes what Save wrote.
type SaveResult struct {
	Path       string
	BackupPath string
	Bytes      int
}

// Save writes the document back to its path, after an optional backup.
// On any error the original file is left as it was.
func Save(fsys afero.Fs, d *Document, opts SaveOptions) (SaveResult, error) {
	res := SaveResult{Path: d.Path}

	data, err := EncodeText(d.Render())
	if err != nil {
		return res, fmt.Errorf("refusing to write %s: %w", d.Path, err)
	}

	if opts.Backup {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		res.BackupPath, err = Backup(fsys, d.Path, now())
		if err != nil {
			return res, err
		}
	}

	mode := d.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := WriteFileAtomic(fsys, d.Path, data, mode); err != nil {
		return res, err
	}
	res.Bytes = len(data)
	return res, nil
}

// BackupPath returns the name of the backup of path taken at t.
func BackupPath(path string, t time.Time) string {
	return fmt.Sprintf("%s.%s.bak", path, t.Format(BackupTimeFormat))
}

// Backup copies path next to itself with a timestamp suffix and returns
// the backup's path.
func Backup(fsys afero.Fs, path string, t time.Time) (string, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for backup: %w", path, err)
	}

	dst := BackupPath(path, t)
	if ok, _ := afero.Exists(fsys, dst); ok {
		return "", fmt.Errorf("backup %s already exists", dst)
	}
	if err := WriteFileAtomic(fsys, dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return dst, nil
}

// WriteFileAtomic writes data to a temporary file in the directory of
// path and renames it over path.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, perm fs.FileMode) (err error) {
	dir := filepath.Dir(path)

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err = fsys.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", tmpName, err)
	}
	if err = fsys.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
