// Package otoaudio plays decoded audio on the default output device through oto.
package otoaudio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hajimehoshi/oto/v2"

	"github.com/user/ornament/pkg/ports"
)

// ErrNoFormat is returned by Put before SetFormat succeeded.
var ErrNoFormat = errors.New("otoaudio: source format not set")

// DeviceSpec is the format the device is opened with.
type DeviceSpec struct {
	Rate     int
	Channels int
}

// player is the part of oto.Player the output drives.
type player interface {
	Play()
	Close() error
}

// Output implements ports.AudioOutput. The device runs at a fixed format;
// samples are converted from the source format on Put.
type Output struct {
	device DeviceSpec
	log    ports.Logger

	mu      sync.Mutex
	buf     []byte
	conv    *converter
	player  player
	playing bool
	closed  bool
	silent  bool
}

// Open opens the default playback device. Only one oto context can exist per
// process.
func Open(device DeviceSpec, log ports.Logger) (*Output, error) {
	ctx, ready, err := oto.NewContext(device.Rate, device.Channels, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	o := newOutput(device, log)
	o.player = ctx.NewPlayer(o)
	o.log.Debug("Audio device open: %d ch, %d Hz", device.Channels, device.Rate)
	return o, nil
}

// NewSilent creates an output that accepts and discards samples, for machines
// without an audio device.
func NewSilent(device DeviceSpec, log ports.Logger) *Output {
	o := newOutput(device, log)
	o.silent = true
	return o
}

func newOutput(device DeviceSpec, log ports.Logger) *Output {
	return &Output{
		device: device,
		log:    log.WithComponent("audio-out"),
	}
}

// SetFormat sets the format of samples passed to Put.
func (o *Output) SetFormat(spec ports.AudioSpec) error {
	if spec.Channels <= 0 || spec.Freq <= 0 {
		return fmt.Errorf("otoaudio: invalid source format %d ch %d Hz", spec.Channels, spec.Freq)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.conv = newConverter(spec, o.device)
	return nil
}

// Resume starts audible playback. Play is called without holding the lock
// because some oto backends read from the output before Play returns.
func (o *Output) Resume() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errors.New("otoaudio: output closed")
	}
	start := o.player != nil && !o.playing
	o.playing = true
	p := o.player
	o.mu.Unlock()

	if start {
		p.Play()
	}
	return nil
}

// Put converts and queues interleaved float32 samples.
func (o *Output) Put(samples []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conv == nil {
		return ErrNoFormat
	}
	converted := o.conv.convert(samples)
	if !o.silent {
		o.buf = append(o.buf, converted...)
	}
	return nil
}

// Clear drops queued samples.
func (o *Output) Clear() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf = o.buf[:0]
	if o.conv != nil {
		o.conv.reset()
	}
	return nil
}

// Queued returns the number of device-format bytes waiting to be played.
func (o *Output) Queued() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.buf)
}

// Read feeds the device. Underruns are filled with silence.
func (o *Output) Read(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := copy(p, o.buf)
	o.buf = o.buf[:copy(o.buf, o.buf[n:])]
	clear(p[n:])
	return len(p), nil
}

// Close stops playback.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	if o.player != nil {
		return o.player.Close()
	}
	return nil
}

var _ ports.AudioOutput = (*Output)(nil)
