// Package iobridge adapts a seekable byte stream to the decode engine's I/O contract.
package iobridge

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/ornament/pkg/ports"
)

// ReadFailed is the count Read reports when the underlying read fails for a reason
// other than a clean end of stream.
const ReadFailed = -1

// ErrRead wraps underlying read failures.
var ErrRead = errors.New("iobridge: read failed")

// Bridge implements ports.StreamIO over a ports.ByteStream.
// It owns the stream and releases it on Close.
type Bridge struct {
	src       ports.ByteStream
	pos       int64
	closeOnce sync.Once
	closeErr  error
}

// New creates a bridge over src.
func New(src ports.ByteStream) *Bridge {
	return &Bridge{src: src}
}

// Read reads up to len(p) bytes from the stream.
func (b *Bridge) Read(p []byte) (int, error) {
	n, err := b.src.Read(p)
	switch {
	case err == nil, n > 0:
		// A short read with data is a success; the error resurfaces on the next call.
		b.pos += int64(n)
		return n, nil
	case errors.Is(err, io.EOF):
		return 0, io.EOF
	default:
		return ReadFailed, fmt.Errorf("%w: %v", ErrRead, err)
	}
}

// StreamLen reports the total length of the stream.
func (b *Bridge) StreamLen() int64 {
	return b.src.Size()
}

// Seek moves to an absolute byte offset.
func (b *Bridge) Seek(offset int64) bool {
	pos, err := b.src.Seek(offset, io.SeekStart)
	if err != nil {
		return false
	}
	b.pos = pos
	return true
}

// Close releases the underlying stream. Later calls return the first result.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		b.closeErr = b.src.Close()
	})
	return b.closeErr
}

// Reader returns an io.ReadSeeker view of the bridge for container parsers and
// pipe feeders. Reads report ErrRead instead of the -1 count.
func (b *Bridge) Reader() io.ReadSeeker {
	return &readSeeker{b: b}
}

// AsReader wraps any ports.StreamIO as an io.ReadSeeker.
func AsReader(s ports.StreamIO) io.ReadSeeker {
	if b, ok := s.(*Bridge); ok {
		return b.Reader()
	}
	return &readSeeker{s: s}
}

type readSeeker struct {
	b   *Bridge
	s   ports.StreamIO
	pos int64
}

func (r *readSeeker) stream() ports.StreamIO {
	if r.b != nil {
		return r.b
	}
	return r.s
}

func (r *readSeeker) position() int64 {
	if r.b != nil {
		return r.b.pos
	}
	return r.pos
}

func (r *readSeeker) Read(p []byte) (int, error) {
	n, err := r.stream().Read(p)
	if n == ReadFailed {
		return 0, err
	}
	r.pos += int64(n)
	return n, err
}

func (r *readSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.position() + offset
	case io.SeekEnd:
		size := r.stream().StreamLen()
		if size < 0 {
			return 0, fmt.Errorf("iobridge: seek from end of stream with unknown length")
		}
		abs = size + offset
	default:
		return 0, fmt.Errorf("iobridge: invalid whence %d", whence)
	}
	if abs < 0 {
		return 0, fmt.Errorf("iobridge: negative offset")
	}
	if !r.stream().Seek(abs) {
		return 0, fmt.Errorf("iobridge: seek to %d failed", abs)
	}
	r.pos = abs
	return abs, nil
}

var _ ports.StreamIO = (*Bridge)(nil)
