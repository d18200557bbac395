package playback

import (
	"errors"
	"testing"

	"github.com/user/ornament/pkg/mocks"
	"github.com/user/ornament/pkg/ports"
)

func TestAudioFeeder_ConfiguresOnce(t *testing.T) {
	s, dec := newSession(t)
	out := mocks.NewAudioOutput()
	f := NewAudioFeeder(s, out, mocks.NewLogger())

	first := dec.QueuePacket(0, 2, 48000, 100)
	f.Feed()

	if len(out.Formats) != 1 || out.Formats[0] != (ports.AudioSpec{Channels: 2, Freq: 48000}) {
		t.Fatalf("formats = %+v, want one 2 ch 48000 Hz", out.Formats)
	}
	if out.Resumes != 1 || !f.Ready() {
		t.Errorf("resumes = %d, ready = %v", out.Resumes, f.Ready())
	}

	dec.QueuePacket(20, 1, 22050, 50)
	dec.QueuePacket(40, 2, 48000, 100)
	f.Feed()

	if len(out.Formats) != 1 || out.Resumes != 1 {
		t.Errorf("format reconfigured: %+v, resumes %d", out.Formats, out.Resumes)
	}
	if out.Puts != 3 {
		t.Errorf("puts = %d, want 3", out.Puts)
	}
	if want := 100*2*4 + 50*1*4 + 100*2*4; out.Queued() != want {
		t.Errorf("queued = %d bytes, want %d", out.Queued(), want)
	}
	if len(dec.FreedAudio) != 3 || dec.FreedAudio[0] != first {
		t.Errorf("released %d packets, want 3", len(dec.FreedAudio))
	}
	if frames, packets := s.Outstanding(); frames != 0 || packets != 0 {
		t.Errorf("outstanding %d/%d", frames, packets)
	}
}

func TestAudioFeeder_NoPackets(t *testing.T) {
	s, _ := newSession(t)
	out := mocks.NewAudioOutput()
	f := NewAudioFeeder(s, out, mocks.NewLogger())

	for i := 0; i < 5; i++ {
		f.Feed()
	}
	if f.Ready() || len(out.Formats) != 0 || out.Puts != 0 {
		t.Error("feeder changed state without packets")
	}
}

func TestAudioFeeder_FormatFailure(t *testing.T) {
	s, dec := newSession(t)
	out := mocks.NewAudioOutput()
	log := mocks.NewLogger()
	f := NewAudioFeeder(s, out, log)

	fail := true
	out.SetFormatFunc = func(ports.AudioSpec) error {
		if fail {
			return errors.New("device busy")
		}
		return nil
	}

	dec.QueuePacket(0, 2, 48000, 10)
	dec.QueuePacket(10, 2, 48000, 10)
	f.Feed()

	if f.Ready() || out.Puts != 0 {
		t.Error("samples queued without a configured format")
	}
	if len(dec.FreedAudio) != 2 {
		t.Errorf("released %d packets, want 2", len(dec.FreedAudio))
	}
	if !log.Has("error", "device busy") {
		t.Error("format failure not logged")
	}

	fail = false
	dec.QueuePacket(20, 2, 48000, 10)
	f.Feed()
	if !f.Ready() || out.Puts != 1 {
		t.Errorf("ready = %v, puts = %d after recovery", f.Ready(), out.Puts)
	}
}

func TestAudioFeeder_Flush(t *testing.T) {
	s, dec := newSession(t)
	out := mocks.NewAudioOutput()
	f := NewAudioFeeder(s, out, mocks.NewLogger())

	dec.QueuePacket(0, 2, 48000, 10)
	f.Feed()
	f.Flush()

	if out.Clears != 1 || out.Queued() != 0 {
		t.Errorf("clears = %d, queued = %d", out.Clears, out.Queued())
	}
	if !f.Ready() {
		t.Error("flush reset the format")
	}
}

func TestAudioFeeder_ShortPacket(t *testing.T) {
	s, dec := newSession(t)
	out := mocks.NewAudioOutput()
	log := mocks.NewLogger()
	f := NewAudioFeeder(s, out, log)

	p := dec.QueuePacket(0, 2, 48000, 100)
	// 10 whole frames plus a partial one, far less than the 100 declared.
	p.Samples = p.Samples[:10*8+3]
	f.Feed()

	if out.Puts != 1 {
		t.Fatalf("puts = %d, want 1", out.Puts)
	}
	if out.Queued() != 10*8 {
		t.Errorf("queued = %d bytes, want %d", out.Queued(), 10*8)
	}
	if !log.Has("warn", "Short audio packet") {
		t.Error("short packet not logged")
	}
	if _, packets := s.Outstanding(); packets != 0 {
		t.Error("short packet not released")
	}
}
