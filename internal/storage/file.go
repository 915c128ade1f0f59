package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteMode selects how File replaces the backing file.
type WriteMode int

const (
	// ModeTruncate rewrites the file in place. A crash mid-write can leave
	// it truncated.
	ModeTruncate WriteMode = iota
	// ModeAtomic writes a temp file, fsyncs it, then renames it over the target.
	ModeAtomic
)

// File implements Provider for a single file on the local file system.
type File struct {
	path string
	mode WriteMode
}

// NewFile returns a provider for path. The file itself need not exist yet,
// but its directory must exist by the time Write is called.
func NewFile(path string, mode WriteMode) *File {
	return &File{path: path, mode: mode}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Read returns the file contents.
func (f *File) Read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}
	return data, nil
}

// Write replaces the file contents using the configured mode.
func (f *File) Write(data []byte) error {
	if f.mode == ModeAtomic {
		return f.writeAtomic(data)
	}
	return f.writeTruncate(data)
}

func (f *File) writeTruncate(data []byte) (err error) {
	fh, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", f.path, err)
	}
	defer func() {
		if cerr := fh.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("storage: close %s: %w", f.path, cerr)
		}
	}()

	if _, err := fh.Write(data); err != nil {
		return fmt.Errorf("storage: write %s: %w", f.path, err)
	}
	return nil
}

// writeAtomic writes content: tmp file → fsync → rename.
func (f *File) writeAtomic(data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, ".rolodex-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}
