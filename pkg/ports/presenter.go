package ports

import (
	"image"
	"image/color"
)

// Presenter abstracts the fixed-size presentation surface.
type Presenter interface {
	// Size returns the surface dimensions in pixels.
	Size() (width, height int)

	// CreateTexture creates a streaming texture of the given dimensions.
	CreateTexture(width, height int, format PixelFormat) (Texture, error)

	// Clear fills the whole surface with a color.
	Clear(c color.RGBA) error

	// DrawTexture stretches a texture over the whole surface.
	DrawTexture(t Texture) error

	// Present shows the composed surface, synchronized with the display refresh.
	Present() error

	// Close releases the surface.
	Close() error
}

// Texture is a presenter-owned image that receives decoded pixels.
type Texture interface {
	Width() int
	Height() int

	// Update replaces the texture contents. pitch is the first plane's row length.
	Update(pixels []byte, pitch int) error

	Destroy() error
}

// AudioSpec describes an interleaved float32 sample stream.
type AudioSpec struct {
	Channels int
	Freq     int
}

// AudioOutput is a single playback stream on the default output device.
type AudioOutput interface {
	// SetFormat sets the format of the data passed to Put.
	SetFormat(spec AudioSpec) error

	// Resume starts audible playback.
	Resume() error

	// Put queues interleaved float32 little-endian samples.
	Put(samples []byte) error

	// Clear drops samples queued but not yet played.
	Clear() error

	// Queued reports the number of bytes waiting to be played.
	Queued() int

	Close() error
}

// EventKind enumerates host events the player reacts to.
type EventKind int

const (
	EventNone EventKind = iota
	EventQuit
	EventKeyDown
)

// Key identifies a keyboard key.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
)

// Event is an input or window event.
type Event struct {
	Kind EventKind
	Key  Key
}

// EventSource delivers pending host events without blocking.
type EventSource interface {
	// PollEvent returns the next pending event, or false when none is queued.
	PollEvent() (Event, bool)
}

// SnapshotSink receives rendered surface snapshots for diagnostics.
type SnapshotSink interface {
	// Enabled returns true if snapshots are stored.
	Enabled() bool

	// SaveSnapshot stores one rendered surface image.
	SaveSnapshot(index int, img image.Image) error
}
