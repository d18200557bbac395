package ports

// PixelFormat identifies the memory layout of decoded video pixels.
type PixelFormat int

const (
	// PixelFormatIYUV is planar YUV 4:2:0 with Y, then U, then V planes.
	PixelFormatIYUV PixelFormat = iota
	// PixelFormatYV12 is planar YUV 4:2:0 with Y, then V, then U planes.
	PixelFormatYV12
	// PixelFormatRGBA is packed 8-bit RGBA.
	PixelFormatRGBA
)

// String returns the string representation of the pixel format.
func (f PixelFormat) String() string {
	switch f {
	case PixelFormatIYUV:
		return "iyuv"
	case PixelFormatYV12:
		return "yv12"
	case PixelFormatRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// ParsePixelFormat parses a string into a PixelFormat. Unknown values map to IYUV.
func ParsePixelFormat(s string) PixelFormat {
	switch s {
	case "yv12":
		return PixelFormatYV12
	case "rgba":
		return PixelFormatRGBA
	default:
		return PixelFormatIYUV
	}
}

// FrameSize returns the number of bytes one frame of the given dimensions occupies.
func (f PixelFormat) FrameSize(width, height int) int {
	switch f {
	case PixelFormatRGBA:
		return width * height * 4
	default:
		cw := (width + 1) / 2
		ch := (height + 1) / 2
		return width*height + 2*cw*ch
	}
}

// Pitch returns the length in bytes of one row of the first plane.
func (f PixelFormat) Pitch(width int) int {
	if f == PixelFormatRGBA {
		return width * 4
	}
	return width
}

// VideoFrame is one decoded video frame. Pixels are owned by the holder until the
// frame is released back to the decoder that produced it.
type VideoFrame struct {
	PlayMs uint64 // presentation time relative to stream start
	FPS    float64
	Width  int
	Height int
	Format PixelFormat
	Pixels []byte
}

// AudioPacket is one decoded run of interleaved float32 little-endian samples.
type AudioPacket struct {
	PlayMs   uint64
	Channels int
	Freq     int
	Frames   int    // sample frames; len(Samples) == Frames*Channels*4
	Samples  []byte // interleaved float32 little-endian
}

// StreamIO is the byte-level I/O contract a decode engine reads its input through.
type StreamIO interface {
	// Read reads up to len(p) bytes. It returns io.EOF at a clean end of stream and
	// -1 with a non-nil error when the underlying read fails for any other reason.
	Read(p []byte) (int, error)

	// StreamLen reports the total length of the stream, or -1 if unknown.
	StreamLen() int64

	// Seek moves to an absolute byte offset and reports success.
	Seek(offset int64) bool

	// Close releases the underlying stream.
	Close() error
}

// Allocator provisions pixel and sample buffers for a decoder.
// Allocate never returns a short buffer; implementations that cannot satisfy a
// request treat it as unrecoverable.
type Allocator interface {
	Allocate(n int) []byte
	Deallocate(buf []byte)
}

// LimitedAllocator is an Allocator with a fixed byte budget.
type LimitedAllocator interface {
	Allocator

	// Limit returns the budget in bytes, or 0 when unlimited.
	Limit() int64
}

// DecodeOptions configures a decode run.
type DecodeOptions struct {
	FrameRate   float64
	PixelFormat PixelFormat
	Threads     int
}

// DecodeEngine starts decoders over a StreamIO.
type DecodeEngine interface {
	// StartDecode binds a decoder to io. The decoder owns io from this point on and
	// closes it on StopDecode, also when StartDecode itself fails.
	StartDecode(io StreamIO, opts DecodeOptions, alloc Allocator) (Decoder, error)
}

// Decoder is a running asynchronous decoder.
type Decoder interface {
	// PumpDecode makes up to maxFrames decoded video frames available. Never blocks.
	PumpDecode(maxFrames int)

	// IsInitialized reports whether stream properties are known and decoding has
	// produced output.
	IsInitialized() bool

	// IsDecoding reports false once the stream is fully consumed and drained.
	IsDecoding() bool

	// Seek restarts decoding at the given stream time.
	Seek(ms uint64) error

	// GetVideo returns the next buffered video frame or nil.
	GetVideo() *VideoFrame

	// GetAudio returns the next buffered audio packet or nil.
	GetAudio() *AudioPacket

	FreeVideo(frame *VideoFrame)
	FreeAudio(packet *AudioPacket)

	// StopDecode tears down the decoder and its input.
	StopDecode()
}
