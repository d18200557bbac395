package playback

import (
	"github.com/user/ornament/pkg/ports"
)

// AudioFeeder moves decoded audio into the output as fast as it decodes.
// The output format comes from the first packet and is never changed.
type AudioFeeder struct {
	src    PacketSource
	out    ports.AudioOutput
	ready  bool
	failed bool
	log    ports.Logger
}

// NewAudioFeeder creates a feeder from src into out.
func NewAudioFeeder(src PacketSource, out ports.AudioOutput, log ports.Logger) *AudioFeeder {
	return &AudioFeeder{
		src: src,
		out: out,
		log: log.WithComponent("audio"),
	}
}

// Feed drains every buffered packet into the output.
func (a *AudioFeeder) Feed() {
	for {
		p, ok := a.src.NextAudioPacket().Get()
		if !ok {
			return
		}

		if !a.ready {
			a.configure(p)
		}
		if a.ready {
			if err := a.out.Put(a.samples(p)); err != nil {
				a.log.Warn("Failed to queue audio: %v", err)
			}
		}

		if err := a.src.ReleaseAudioPacket(p); err != nil {
			a.log.Warn("Failed to release audio packet: %v", err)
		}
	}
}

// samples returns the packet's declared sample data, cut to whole frames of
// what is actually present.
func (a *AudioFeeder) samples(p *ports.AudioPacket) []byte {
	n := p.Frames * p.Channels * 4
	if n <= len(p.Samples) {
		return p.Samples[:n]
	}
	a.log.Warn("Short audio packet at %d ms: %d of %d bytes", p.PlayMs, len(p.Samples), n)
	frameBytes := p.Channels * 4
	if frameBytes <= 0 {
		return nil
	}
	return p.Samples[:len(p.Samples)-len(p.Samples)%frameBytes]
}

func (a *AudioFeeder) configure(p *ports.AudioPacket) {
	spec := ports.AudioSpec{Channels: p.Channels, Freq: p.Freq}
	if err := a.out.SetFormat(spec); err != nil {
		if !a.failed {
			a.log.Error("Failed to set audio format %d ch %d Hz: %v", spec.Channels, spec.Freq, err)
			a.failed = true
		}
		return
	}
	if err := a.out.Resume(); err != nil {
		a.log.Error("Failed to start audio playback: %v", err)
		return
	}
	a.ready = true
	a.log.Info("Audio: %d ch, %d Hz", spec.Channels, spec.Freq)
}

// Ready reports whether the output format has been configured.
func (a *AudioFeeder) Ready() bool {
	return a.ready
}

// Flush drops audio queued in the output but not yet played.
func (a *AudioFeeder) Flush() {
	if err := a.out.Clear(); err != nil {
		a.log.Warn("Failed to flush audio: %v", err)
	}
}
