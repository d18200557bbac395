// Package playback schedules decoded video and audio against a wall clock.
//
// Everything here runs on the single scheduling goroutine that drives the host
// loop. The decode session is the only component with internal concurrency.
package playback

import (
	"github.com/samber/mo"

	"github.com/user/ornament/pkg/ports"
)

// ClockSource is the part of a decode session the playback clock watches.
type ClockSource interface {
	IsInitialized() bool
	IsActive() bool
	Seek(ms uint64) error
}

// FrameSource hands out decoded video frames.
type FrameSource interface {
	NextVideoFrame() mo.Option[*ports.VideoFrame]
	ReleaseVideoFrame(f *ports.VideoFrame) error
}

// PacketSource hands out decoded audio packets.
type PacketSource interface {
	NextAudioPacket() mo.Option[*ports.AudioPacket]
	ReleaseAudioPacket(a *ports.AudioPacket) error
}

// Source is a full decode session as the player drives it.
type Source interface {
	ClockSource
	FrameSource
	PacketSource
	Pump(maxFrames int)
	Stop() error
}
