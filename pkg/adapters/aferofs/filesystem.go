// Package aferofs provides a filesystem implementation backed by afero.
//
// Production code uses the OS backend; tests swap in an in-memory backend.
package aferofs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/user/ornament/pkg/ports"
)

// FileSystem implements ports.FileSystem on top of an afero.Fs.
type FileSystem struct {
	fs afero.Afero
}

// New creates a FileSystem over the operating system's filesystem.
func New() *FileSystem {
	return NewWithFs(afero.NewOsFs())
}

// NewMemory creates a FileSystem over a volatile in-memory backend.
func NewMemory() *FileSystem {
	return NewWithFs(afero.NewMemMapFs())
}

// NewWithFs creates a FileSystem over the given backend.
func NewWithFs(fs afero.Fs) *FileSystem {
	return &FileSystem{fs: afero.Afero{Fs: fs}}
}

// Open opens a file for reading.
func (f *FileSystem) Open(path string) (ports.ByteStream, error) {
	file, err := f.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("open %s: is a directory", path)
	}
	return &stream{File: file, size: info.Size()}, nil
}

// WriteFile writes data to a file, creating parent directories as needed.
func (f *FileSystem) WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := f.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return f.fs.WriteFile(path, data, 0644)
}

// MkdirAll creates a directory and all parent directories.
func (f *FileSystem) MkdirAll(path string) error {
	return f.fs.MkdirAll(path, 0755)
}

// Exists checks if a file or directory exists.
func (f *FileSystem) Exists(path string) (bool, error) {
	_, err := f.fs.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Afero exposes the backend for callers that need direct access, such as tests
// seeding fixtures.
func (f *FileSystem) Afero() afero.Afero {
	return f.fs
}

type stream struct {
	afero.File
	size int64
}

func (s *stream) Size() int64 {
	return s.size
}

var _ ports.FileSystem = (*FileSystem)(nil)
