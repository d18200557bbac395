// Package probe reads container headers to learn stream properties before decoding.
package probe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Container identifies a media container format.
type Container string

const (
	ContainerMP4     Container = "mp4"
	ContainerWebM    Container = "webm"
	ContainerOgg     Container = "ogg"
	ContainerUnknown Container = "unknown"
)

var (
	// ErrUnsupportedContainer is returned for containers the probe cannot parse.
	ErrUnsupportedContainer = errors.New("probe: unsupported container")
	// ErrNoVideoTrack is returned when the container has no video track.
	ErrNoVideoTrack = errors.New("probe: no video track found")
	// ErrNotStreamable is returned for MP4 files whose index follows the media data,
	// which cannot be decoded from a forward-only pipe.
	ErrNotStreamable = errors.New("probe: moov box follows mdat; remux with -movflags +faststart")
)

// StreamInfo describes the streams found in a container header.
type StreamInfo struct {
	Container  Container
	VideoCodec string
	Width      int
	Height     int
	DurationMs uint64

	HasAudio   bool
	AudioCodec string
	Channels   int
	SampleRate int
}

// Detect sniffs the container format from the first bytes of r and rewinds it.
func Detect(r io.ReadSeeker) (Container, error) {
	head := make([]byte, 12)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return ContainerUnknown, fmt.Errorf("read header: %w", err)
	}
	head = head[:n]

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return ContainerUnknown, fmt.Errorf("seek: %w", err)
	}

	switch {
	case bytes.HasPrefix(head, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return ContainerWebM, nil
	case bytes.HasPrefix(head, []byte("OggS")):
		return ContainerOgg, nil
	case len(head) >= 8 && isMP4BoxType(head[4:8]):
		return ContainerMP4, nil
	default:
		return ContainerUnknown, nil
	}
}

func isMP4BoxType(t []byte) bool {
	switch string(t) {
	case "ftyp", "styp", "moov", "moof", "free", "skip", "wide":
		return true
	}
	return false
}

// Probe detects the container and parses its header. r is left positioned at 0.
func Probe(r io.ReadSeeker) (StreamInfo, error) {
	container, err := Detect(r)
	if err != nil {
		return StreamInfo{}, err
	}

	var info StreamInfo
	switch container {
	case ContainerMP4:
		info, err = probeMP4(r)
	case ContainerWebM:
		info, err = probeWebM(r)
	case ContainerOgg:
		info, err = probeOgg(r)
	default:
		return StreamInfo{Container: container}, fmt.Errorf("%w: %s", ErrUnsupportedContainer, container)
	}
	if err != nil {
		return info, err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return info, fmt.Errorf("seek: %w", err)
	}

	if info.Width <= 0 || info.Height <= 0 {
		return info, ErrNoVideoTrack
	}
	return info, nil
}
