// Package session owns one asynchronous decode session over a byte source.
package session

import (
	"errors"
	"fmt"

	"github.com/samber/mo"

	"github.com/user/ornament/pkg/adapters/iobridge"
	"github.com/user/ornament/pkg/ports"
)

var (
	// ErrUnitsOutstanding is returned by Stop while frames or packets are still held.
	ErrUnitsOutstanding = errors.New("session: decoded units still outstanding")

	// ErrStopped is returned when a stopped session is used.
	ErrStopped = errors.New("session: stopped")

	// ErrUnknownUnit is returned when releasing a unit this session did not hand out.
	ErrUnknownUnit = errors.New("session: unit not obtained from this session")
)

// State is the lifecycle state of a session.
type State int

const (
	// StateAbsent means no decoder is running.
	StateAbsent State = iota
	// StateActive means the decoder is producing or still holds output.
	StateActive
	// StateExhausted means the stream is fully consumed and drained.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateActive:
		return "active"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Options configures a decode session.
type Options struct {
	FrameRate   float64
	PixelFormat ports.PixelFormat
	Threads     int
}

// Session wraps a ports.Decoder and tracks every unit it hands out.
// It is not safe for concurrent use.
type Session struct {
	dec     ports.Decoder
	log     ports.Logger
	video   map[*ports.VideoFrame]struct{}
	audio   map[*ports.AudioPacket]struct{}
	stopped bool
}

// Start binds a decoder to src through an I/O bridge. The session owns src from
// this point on, also when Start fails.
func Start(src ports.ByteStream, engine ports.DecodeEngine, opts Options, alloc ports.Allocator, log ports.Logger) (*Session, error) {
	log = log.WithComponent("session")

	dec, err := engine.StartDecode(iobridge.New(src), ports.DecodeOptions{
		FrameRate:   opts.FrameRate,
		PixelFormat: opts.PixelFormat,
		Threads:     opts.Threads,
	}, alloc)
	if err != nil {
		return nil, fmt.Errorf("start decode: %w", err)
	}

	log.Debug("Decode session started (%.0f fps, %s, %d threads)", opts.FrameRate, opts.PixelFormat, opts.Threads)
	return &Session{
		dec:   dec,
		log:   log,
		video: make(map[*ports.VideoFrame]struct{}),
		audio: make(map[*ports.AudioPacket]struct{}),
	}, nil
}

// Pump advances decoding by at most maxFrames video frames. Never blocks.
func (s *Session) Pump(maxFrames int) {
	if s.stopped {
		return
	}
	s.dec.PumpDecode(maxFrames)
}

// IsInitialized reports whether the decoder has produced output.
func (s *Session) IsInitialized() bool {
	return !s.stopped && s.dec.IsInitialized()
}

// IsActive reports whether the decoder is still producing or holding output.
func (s *Session) IsActive() bool {
	return !s.stopped && s.dec.IsDecoding()
}

// State reports the lifecycle state.
func (s *Session) State() State {
	switch {
	case s.stopped:
		return StateAbsent
	case s.dec.IsDecoding():
		return StateActive
	default:
		return StateExhausted
	}
}

// Seek restarts decoding at ms. Seek(0) is how the player loops.
func (s *Session) Seek(ms uint64) error {
	if s.stopped {
		return ErrStopped
	}
	if err := s.dec.Seek(ms); err != nil {
		return fmt.Errorf("seek to %d ms: %w", ms, err)
	}
	return nil
}

// NextVideoFrame pulls the next decoded frame, if any.
func (s *Session) NextVideoFrame() mo.Option[*ports.VideoFrame] {
	if s.stopped {
		return mo.None[*ports.VideoFrame]()
	}
	f := s.dec.GetVideo()
	if f == nil {
		return mo.None[*ports.VideoFrame]()
	}
	s.video[f] = struct{}{}
	return mo.Some(f)
}

// NextAudioPacket pulls the next decoded audio packet, if any.
func (s *Session) NextAudioPacket() mo.Option[*ports.AudioPacket] {
	if s.stopped {
		return mo.None[*ports.AudioPacket]()
	}
	a := s.dec.GetAudio()
	if a == nil {
		return mo.None[*ports.AudioPacket]()
	}
	s.audio[a] = struct{}{}
	return mo.Some(a)
}

// ReleaseVideoFrame returns a frame to the decoder.
func (s *Session) ReleaseVideoFrame(f *ports.VideoFrame) error {
	if _, ok := s.video[f]; !ok {
		return ErrUnknownUnit
	}
	delete(s.video, f)
	s.dec.FreeVideo(f)
	return nil
}

// ReleaseAudioPacket returns a packet to the decoder.
func (s *Session) ReleaseAudioPacket(a *ports.AudioPacket) error {
	if _, ok := s.audio[a]; !ok {
		return ErrUnknownUnit
	}
	delete(s.audio, a)
	s.dec.FreeAudio(a)
	return nil
}

// Outstanding returns how many frames and packets are currently held.
func (s *Session) Outstanding() (frames, packets int) {
	return len(s.video), len(s.audio)
}

// Stop tears down the decoder. Every pulled unit must be released first.
func (s *Session) Stop() error {
	if s.stopped {
		return ErrStopped
	}
	if frames, packets := s.Outstanding(); frames+packets > 0 {
		return fmt.Errorf("%w: %d frames, %d packets", ErrUnitsOutstanding, frames, packets)
	}
	s.stopped = true
	s.dec.StopDecode()
	s.log.Debug("Decode session stopped")
	return nil
}
