package ports

import "io"

// ByteStream is a seekable byte source with a known size.
type ByteStream interface {
	io.Reader
	io.Seeker
	io.Closer

	// Size returns the total stream length in bytes, or -1 if unknown.
	Size() int64
}

// FileSystem abstracts file system operations.
type FileSystem interface {
	// Open opens a file for reading as a ByteStream.
	Open(path string) (ByteStream, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists checks if a file or directory exists.
	Exists(path string) (bool, error)
}
