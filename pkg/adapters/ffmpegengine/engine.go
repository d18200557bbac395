// Package ffmpegengine implements ports.DecodeEngine with an ffmpeg subprocess.
//
// Each decode pass runs one ffmpeg process fed from the I/O bridge over stdin.
// Raw video frames come back on stdout and interleaved float32 audio on an extra
// pipe. Worker goroutines copy both into allocator buffers and hand them over on
// bounded channels; PumpDecode moves them into the pull queues without blocking.
package ffmpegengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/user/ornament/pkg/adapters/iobridge"
	"github.com/user/ornament/pkg/adapters/probe"
	"github.com/user/ornament/pkg/ports"
)

const (
	defaultMaxBufferedFrames = 30
	defaultAudioPacketFrames = 1024
	feedChunkSize            = 64 * 1024
)

var (
	// ErrInit is returned when the stream header cannot be decoded.
	ErrInit = errors.New("ffmpegengine: cannot initialize decoder")

	// ErrBudget is returned when the allocator's budget cannot hold the buffers a
	// decode pass of the probed stream may keep in flight.
	ErrBudget = errors.New("ffmpegengine: memory budget too small for stream")

	// ErrAllocation is returned by a decode worker when the allocator refuses a buffer.
	ErrAllocation = errors.New("ffmpegengine: buffer allocation failed")
)

// Options configures the engine.
type Options struct {
	// FFmpegPath is an explicit ffmpeg binary. Empty searches PATH.
	FFmpegPath string

	// MaxBufferedFrames bounds decoded video frames held between the workers and
	// the pull queue.
	MaxBufferedFrames int

	// AudioPacketFrames is the number of sample frames per audio packet.
	AudioPacketFrames int
}

// Engine starts ffmpeg-backed decoders.
type Engine struct {
	opts   Options
	log    ports.Logger
	launch launcher
	probe  func(io.ReadSeeker) (probe.StreamInfo, error)
}

// New creates an engine. The ffmpeg binary is resolved on each StartDecode.
func New(opts Options, log ports.Logger) *Engine {
	if opts.MaxBufferedFrames <= 0 {
		opts.MaxBufferedFrames = defaultMaxBufferedFrames
	}
	if opts.AudioPacketFrames <= 0 {
		opts.AudioPacketFrames = defaultAudioPacketFrames
	}
	return &Engine{
		opts:  opts,
		log:   log.WithComponent("engine"),
		probe: probe.Probe,
	}
}

// StartDecode probes the stream header and starts the first decode pass.
func (e *Engine) StartDecode(stream ports.StreamIO, opts ports.DecodeOptions, alloc ports.Allocator) (ports.Decoder, error) {
	if opts.FrameRate <= 0 {
		stream.Close()
		return nil, fmt.Errorf("%w: frame rate must be positive", ErrInit)
	}

	reader := iobridge.AsReader(stream)
	info, err := e.probe(reader)
	if err != nil {
		stream.Close()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}
	if info.HasAudio && (info.Channels <= 0 || info.SampleRate <= 0) {
		e.log.Warn("Ignoring audio track with unknown format")
		info.HasAudio = false
	}
	e.log.Debug("Stream: %s %s %dx%d, audio=%v (%s %d ch %d Hz)",
		info.Container, info.VideoCodec, info.Width, info.Height,
		info.HasAudio, info.AudioCodec, info.Channels, info.SampleRate)

	if err := e.checkBudget(info, opts, alloc); err != nil {
		stream.Close()
		return nil, fmt.Errorf("%w: %w", ErrInit, err)
	}

	launch := e.launch
	if launch == nil {
		path, err := findFFmpeg(e.opts.FFmpegPath)
		if err != nil {
			stream.Close()
			return nil, err
		}
		launch = execLauncher(path)
	}

	d := &decoder{
		stream: stream,
		reader: reader,
		info:   info,
		opts:   opts,
		eopts:  e.opts,
		alloc:  alloc,
		log:    e.log,
		launch: launch,
	}
	if err := d.startPass(0); err != nil {
		stream.Close()
		return nil, err
	}
	return d, nil
}

// PeakBytes returns the most buffer memory one decode pass of info can hold at
// once: both video stages full plus the frame being read and the frame held by
// the scheduler, and the audio channel likewise.
func (e *Engine) PeakBytes(info probe.StreamInfo, opts ports.DecodeOptions) int64 {
	units := int64(2*e.opts.MaxBufferedFrames + 2)
	peak := units * int64(opts.PixelFormat.FrameSize(info.Width, info.Height))
	if info.HasAudio {
		peak += units * int64(e.opts.AudioPacketFrames*info.Channels*4)
	}
	return peak
}

// checkBudget rejects streams whose decode buffers cannot fit a limited allocator.
func (e *Engine) checkBudget(info probe.StreamInfo, opts ports.DecodeOptions, alloc ports.Allocator) error {
	la, ok := alloc.(ports.LimitedAllocator)
	if !ok || la.Limit() <= 0 {
		return nil
	}
	if need := e.PeakBytes(info, opts); need > la.Limit() {
		return fmt.Errorf("%w: %dx%d %s needs %d MB, budget is %d MB",
			ErrBudget, info.Width, info.Height, opts.PixelFormat, (need+1<<20-1)>>20, la.Limit()>>20)
	}
	return nil
}

// pass is one running ffmpeg process and its workers.
type pass struct {
	cancel context.CancelFunc
	video  chan *ports.VideoFrame
	audio  chan *ports.AudioPacket
	done   chan struct{}
}

func (p *pass) finished() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// decoder implements ports.Decoder. Its methods are called from a single
// goroutine; only the channels and the initialized flag are shared with workers.
type decoder struct {
	stream ports.StreamIO
	reader io.ReadSeeker
	info   probe.StreamInfo
	opts   ports.DecodeOptions
	eopts  Options
	alloc  ports.Allocator
	log    ports.Logger
	launch launcher

	current     *pass
	videoQ      []*ports.VideoFrame
	audioQ      []*ports.AudioPacket
	initialized atomic.Bool
	stopped     bool
}

func (d *decoder) startPass(startMs uint64) error {
	if _, err := d.reader.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind stream: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	proc, err := d.launch(gctx, buildArgs(d.info, d.opts, startMs), d.info.HasAudio)
	if err != nil {
		cancel()
		return fmt.Errorf("launch decoder: %w", err)
	}

	p := &pass{
		cancel: cancel,
		video:  make(chan *ports.VideoFrame, d.eopts.MaxBufferedFrames),
		audio:  make(chan *ports.AudioPacket, d.eopts.MaxBufferedFrames*2),
		done:   make(chan struct{}),
	}

	g.Go(func() error { return d.feed(gctx, proc.Stdin()) })
	g.Go(func() error { return d.readVideo(gctx, proc.Video(), p.video, startMs) })
	if audio := proc.Audio(); audio != nil {
		g.Go(func() error { return d.readAudio(gctx, audio, p.audio, startMs) })
	}

	go func() {
		defer close(p.done)
		err := g.Wait()
		waitErr := proc.Wait()
		if ctx.Err() != nil {
			return
		}
		switch {
		case err != nil:
			d.log.Warn("Stream fault, ending decode pass: %v", err)
		case waitErr != nil:
			d.log.Warn("Decoder exited with error: %v", waitErr)
		default:
			d.log.Debug("Decode pass finished")
		}
	}()

	d.current = p
	d.log.Debug("Decode pass started at %d ms", startMs)
	return nil
}

// stopPass cancels the running pass, waits for its workers and frees whatever
// they left in the channels.
func (d *decoder) stopPass() {
	p := d.current
	if p == nil {
		return
	}
	d.current = nil
	p.cancel()
	<-p.done

	for {
		select {
		case f := <-p.video:
			d.FreeVideo(f)
		case a := <-p.audio:
			d.FreeAudio(a)
		default:
			return
		}
	}
}

func (d *decoder) freeQueues() {
	for _, f := range d.videoQ {
		d.FreeVideo(f)
	}
	for _, a := range d.audioQ {
		d.FreeAudio(a)
	}
	d.videoQ = nil
	d.audioQ = nil
}

// feed copies the input stream into the decoder's stdin.
func (d *decoder) feed(ctx context.Context, stdin io.WriteCloser) error {
	defer stdin.Close()

	buf := make([]byte, feedChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := d.stream.Read(buf)
		if n > 0 {
			if _, werr := stdin.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write decoder input: %w", werr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (d *decoder) readVideo(ctx context.Context, r io.Reader, out chan<- *ports.VideoFrame, startMs uint64) error {
	w, h := d.info.Width, d.info.Height
	size := d.opts.PixelFormat.FrameSize(w, h)

	for k := 0; ; k++ {
		buf := d.alloc.Allocate(size)
		if len(buf) < size {
			return ErrAllocation
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			d.alloc.Deallocate(buf)
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read video: %w", err)
		}
		if d.opts.PixelFormat == ports.PixelFormatYV12 {
			swapChroma(buf, w, h)
		}

		frame := &ports.VideoFrame{
			PlayMs: startMs + uint64(float64(k)*1000/d.opts.FrameRate),
			FPS:    d.opts.FrameRate,
			Width:  w,
			Height: h,
			Format: d.opts.PixelFormat,
			Pixels: buf,
		}
		select {
		case out <- frame:
		case <-ctx.Done():
			d.alloc.Deallocate(buf)
			return ctx.Err()
		}
	}
}

func (d *decoder) readAudio(ctx context.Context, r io.Reader, out chan<- *ports.AudioPacket, startMs uint64) error {
	channels, freq := d.info.Channels, d.info.SampleRate
	frameBytes := channels * 4
	size := d.eopts.AudioPacketFrames * frameBytes

	var samples uint64
	for {
		buf := d.alloc.Allocate(size)
		if len(buf) < size {
			return ErrAllocation
		}
		n, err := io.ReadFull(r, buf)
		n -= n % frameBytes
		if n == 0 {
			d.alloc.Deallocate(buf)
			if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("read audio: %w", err)
		}

		frames := n / frameBytes
		packet := &ports.AudioPacket{
			PlayMs:   startMs + samples*1000/uint64(freq),
			Channels: channels,
			Freq:     freq,
			Frames:   frames,
			Samples:  buf[:n],
		}
		samples += uint64(frames)

		select {
		case out <- packet:
		case <-ctx.Done():
			d.alloc.Deallocate(buf)
			return ctx.Err()
		}
		if err != nil {
			// short final packet
			return nil
		}
	}
}

// swapChroma exchanges the U and V planes of a yuv420p frame in place.
func swapChroma(buf []byte, w, h int) {
	ySize := w * h
	cSize := ((w + 1) / 2) * ((h + 1) / 2)
	u := buf[ySize : ySize+cSize]
	v := buf[ySize+cSize : ySize+2*cSize]
	for i := range u {
		u[i], v[i] = v[i], u[i]
	}
}

// PumpDecode moves decoded units from the workers into the pull queues.
func (d *decoder) PumpDecode(maxFrames int) {
	p := d.current
	if p == nil {
		return
	}

video:
	for i := 0; i < maxFrames && len(d.videoQ) < d.eopts.MaxBufferedFrames; i++ {
		select {
		case f := <-p.video:
			d.videoQ = append(d.videoQ, f)
			d.initialized.Store(true)
		default:
			break video
		}
	}

	for {
		select {
		case a := <-p.audio:
			d.audioQ = append(d.audioQ, a)
			d.initialized.Store(true)
		default:
			return
		}
	}
}

func (d *decoder) IsInitialized() bool {
	return d.initialized.Load()
}

// IsDecoding reports false once the current pass has ended and every unit it
// produced has been pulled.
func (d *decoder) IsDecoding() bool {
	p := d.current
	if p == nil {
		return false
	}
	if !p.finished() {
		return true
	}
	return len(p.video) > 0 || len(p.audio) > 0 || len(d.videoQ) > 0 || len(d.audioQ) > 0
}

// Seek restarts decoding from the beginning of the stream, skipping to ms.
func (d *decoder) Seek(ms uint64) error {
	if d.stopped {
		return errors.New("ffmpegengine: decoder stopped")
	}
	d.stopPass()
	d.freeQueues()
	if err := d.startPass(ms); err != nil {
		return fmt.Errorf("seek to %d ms: %w", ms, err)
	}
	return nil
}

func (d *decoder) GetVideo() *ports.VideoFrame {
	if len(d.videoQ) == 0 {
		return nil
	}
	f := d.videoQ[0]
	d.videoQ[0] = nil
	d.videoQ = d.videoQ[1:]
	return f
}

func (d *decoder) GetAudio() *ports.AudioPacket {
	if len(d.audioQ) == 0 {
		return nil
	}
	a := d.audioQ[0]
	d.audioQ[0] = nil
	d.audioQ = d.audioQ[1:]
	return a
}

func (d *decoder) FreeVideo(frame *ports.VideoFrame) {
	if frame == nil || frame.Pixels == nil {
		return
	}
	d.alloc.Deallocate(frame.Pixels)
	frame.Pixels = nil
}

func (d *decoder) FreeAudio(packet *ports.AudioPacket) {
	if packet == nil || packet.Samples == nil {
		return
	}
	d.alloc.Deallocate(packet.Samples[:cap(packet.Samples)])
	packet.Samples = nil
}

// StopDecode ends the current pass and closes the input stream.
func (d *decoder) StopDecode() {
	if d.stopped {
		return
	}
	d.stopped = true
	d.stopPass()
	d.freeQueues()
	if err := d.stream.Close(); err != nil {
		d.log.Warn("Failed to close stream: %v", err)
	}
}

var (
	_ ports.DecodeEngine = (*Engine)(nil)
	_ ports.Decoder      = (*decoder)(nil)
)
