// Package filesink provides a file-based snapshot sink implementation.
package filesink

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"

	"github.com/user/ornament/pkg/ports"
)

// Sink saves rendered surface snapshots as PNG files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new Sink writing below baseDir.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveSnapshot saves one rendered surface.
func (s *Sink) SaveSnapshot(index int, img image.Image) error {
	dir := filepath.Join(s.baseDir, "snapshots")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%05d.png", index))
	return s.fs.WriteFile(path, buf.Bytes())
}

// Ensure Sink implements ports.SnapshotSink
var _ ports.SnapshotSink = (*Sink)(nil)
