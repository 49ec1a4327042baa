// Package storage implements the backup filesystem on top of afero, so the
// same code writes to disk in production and to memory in tests.
package storage

import (
	"fmt"

	"github.com/spf13/afero"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// FS implements backup.Filesystem.
type FS struct {
	fs afero.Fs
}

// New wraps an afero filesystem.
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// NewOS returns an FS backed by the operating system.
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// Afero exposes the underlying filesystem for streaming access.
func (f *FS) Afero() afero.Fs { return f.fs }

// CreateDirectory creates path and any missing parents. Existing directories
// and their files are left alone.
func (f *FS) CreateDirectory(path string) error {
	if err := f.fs.MkdirAll(path, dirPerm); err != nil {
		return fmt.Errorf("create directory %q: %w", path, err)
	}
	return nil
}

// WriteAllBytes creates or truncates path and writes data to it.
func (f *FS) WriteAllBytes(path string, data []byte) error {
	if err := afero.WriteFile(f.fs, path, data, filePerm); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// ReadAllBytes returns the content of path.
func (f *FS) ReadAllBytes(path string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}

// FileExists reports whether path exists and is a regular file.
func (f *FS) FileExists(path string) bool {
	info, err := f.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// GetFileSize returns the size of path in bytes.
func (f *FS) GetFileSize(path string) (int64, error) {
	info, err := f.fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("stat %q: %w", path, err)
	}
	return info.Size(), nil
}
