package mocks

import (
	"github.com/user/ornament/pkg/ports"
)

// Decoder is a scripted ports.Decoder. Tests queue units in Video and Audio and
// steer the Initialized and Decoding flags directly.
type Decoder struct {
	Initialized bool
	Decoding    bool
	Video       []*ports.VideoFrame
	Audio       []*ports.AudioPacket

	PumpFunc func(maxFrames int)
	SeekFunc func(ms uint64) error

	PumpCalls  []int
	Seeks      []uint64
	FreedVideo []*ports.VideoFrame
	FreedAudio []*ports.AudioPacket
	Stops      int
}

// NewDecoder creates a decoder that reports itself as decoding.
func NewDecoder() *Decoder {
	return &Decoder{Decoding: true}
}

func (m *Decoder) PumpDecode(maxFrames int) {
	m.PumpCalls = append(m.PumpCalls, maxFrames)
	if m.PumpFunc != nil {
		m.PumpFunc(maxFrames)
	}
}

func (m *Decoder) IsInitialized() bool { return m.Initialized }
func (m *Decoder) IsDecoding() bool    { return m.Decoding }

func (m *Decoder) Seek(ms uint64) error {
	m.Seeks = append(m.Seeks, ms)
	if m.SeekFunc != nil {
		return m.SeekFunc(ms)
	}
	m.Decoding = true
	return nil
}

func (m *Decoder) GetVideo() *ports.VideoFrame {
	if len(m.Video) == 0 {
		return nil
	}
	f := m.Video[0]
	m.Video = m.Video[1:]
	return f
}

func (m *Decoder) GetAudio() *ports.AudioPacket {
	if len(m.Audio) == 0 {
		return nil
	}
	a := m.Audio[0]
	m.Audio = m.Audio[1:]
	return a
}

func (m *Decoder) FreeVideo(frame *ports.VideoFrame) {
	m.FreedVideo = append(m.FreedVideo, frame)
}

func (m *Decoder) FreeAudio(packet *ports.AudioPacket) {
	m.FreedAudio = append(m.FreedAudio, packet)
}

func (m *Decoder) StopDecode() {
	m.Stops++
}

// QueueFrame appends a frame with the given timestamp and dimensions.
func (m *Decoder) QueueFrame(playMs uint64, width, height int) *ports.VideoFrame {
	f := &ports.VideoFrame{
		PlayMs: playMs,
		FPS:    30,
		Width:  width,
		Height: height,
		Format: ports.PixelFormatIYUV,
		Pixels: make([]byte, ports.PixelFormatIYUV.FrameSize(width, height)),
	}
	m.Video = append(m.Video, f)
	return f
}

// QueuePacket appends an audio packet of frames sample frames.
func (m *Decoder) QueuePacket(playMs uint64, channels, freq, frames int) *ports.AudioPacket {
	a := &ports.AudioPacket{
		PlayMs:   playMs,
		Channels: channels,
		Freq:     freq,
		Frames:   frames,
		Samples:  make([]byte, frames*channels*4),
	}
	m.Audio = append(m.Audio, a)
	return a
}

var _ ports.Decoder = (*Decoder)(nil)

// DecodeEngine is a mock implementation of ports.DecodeEngine.
type DecodeEngine struct {
	Decoder *Decoder
	Err     error

	StartDecodeFunc func(io ports.StreamIO, opts ports.DecodeOptions, alloc ports.Allocator) (ports.Decoder, error)

	Opts   ports.DecodeOptions
	Stream ports.StreamIO
	Starts int
}

// NewDecodeEngine creates an engine that hands out dec.
func NewDecodeEngine(dec *Decoder) *DecodeEngine {
	return &DecodeEngine{Decoder: dec}
}

func (m *DecodeEngine) StartDecode(io ports.StreamIO, opts ports.DecodeOptions, alloc ports.Allocator) (ports.Decoder, error) {
	m.Starts++
	m.Opts = opts
	m.Stream = io
	if m.StartDecodeFunc != nil {
		return m.StartDecodeFunc(io, opts, alloc)
	}
	if m.Err != nil {
		io.Close()
		return nil, m.Err
	}
	return m.Decoder, nil
}

var _ ports.DecodeEngine = (*DecodeEngine)(nil)
