package otoaudio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/user/ornament/pkg/mocks"
	"github.com/user/ornament/pkg/ports"
)

func floats(vals ...float32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func decodeFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

type fakePlayer struct {
	plays  int
	closed bool
	onPlay func()
}

func (p *fakePlayer) Play() {
	p.plays++
	if p.onPlay != nil {
		p.onPlay()
	}
}
func (p *fakePlayer) Close() error { p.closed = true; return nil }

func TestConverter_Passthrough(t *testing.T) {
	c := newConverter(ports.AudioSpec{Channels: 2, Freq: 48000}, DeviceSpec{Rate: 48000, Channels: 2})

	var got []float32
	got = append(got, decodeFloats(c.convert(floats(1, -1, 2, -2, 3, -3, 4, -4)))...)
	got = append(got, decodeFloats(c.convert(floats(5, -5, 6, -6)))...)

	want := []float32{1, -1, 2, -2, 3, -3, 4, -4, 5, -5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestConverter_MonoToStereo(t *testing.T) {
	c := newConverter(ports.AudioSpec{Channels: 1, Freq: 8000}, DeviceSpec{Rate: 8000, Channels: 2})
	got := decodeFloats(c.convert(floats(0.5, 0.25, 0.125)))
	want := []float32{0.5, 0.5, 0.25, 0.25}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestConverter_StereoToMono(t *testing.T) {
	c := newConverter(ports.AudioSpec{Channels: 2, Freq: 8000}, DeviceSpec{Rate: 8000, Channels: 1})
	got := decodeFloats(c.convert(floats(1, 0, 0.5, 0.5, 0, 0)))
	want := []float32{0.5, 0.5}
	if len(got) != 2 || !approx(got[0], want[0]) || !approx(got[1], want[1]) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestConverter_Upsample(t *testing.T) {
	c := newConverter(ports.AudioSpec{Channels: 1, Freq: 24000}, DeviceSpec{Rate: 48000, Channels: 1})
	got := decodeFloats(c.convert(floats(0, 1, 2, 3)))
	want := []float32{0, 0.5, 1, 1.5, 2, 2.5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	// continues smoothly across packets
	got = decodeFloats(c.convert(floats(4)))
	if len(got) != 2 || !approx(got[0], 3) || !approx(got[1], 3.5) {
		t.Errorf("second packet = %v, want [3 3.5]", got)
	}
}

func TestConverter_Downsample(t *testing.T) {
	c := newConverter(ports.AudioSpec{Channels: 1, Freq: 96000}, DeviceSpec{Rate: 48000, Channels: 1})
	in := make([]float32, 201)
	for i := range in {
		in[i] = float32(i)
	}
	got := decodeFloats(c.convert(floats(in...)))
	if len(got) != 100 {
		t.Fatalf("got %d frames, want 100", len(got))
	}
	for i, v := range got {
		if !approx(v, float32(2*i)) {
			t.Fatalf("frame %d = %v, want %d", i, v, 2*i)
		}
	}
}

func TestOutput_PutRequiresFormat(t *testing.T) {
	o := newOutput(DeviceSpec{Rate: 48000, Channels: 2}, mocks.NewLogger())
	if err := o.Put(floats(1, 1)); !errors.Is(err, ErrNoFormat) {
		t.Errorf("Put = %v, want ErrNoFormat", err)
	}
	if err := o.SetFormat(ports.AudioSpec{Channels: 0, Freq: 48000}); err == nil {
		t.Error("expected error for zero channels")
	}
}

func TestOutput_QueueAndRead(t *testing.T) {
	o := newOutput(DeviceSpec{Rate: 48000, Channels: 2}, mocks.NewLogger())
	if err := o.SetFormat(ports.AudioSpec{Channels: 2, Freq: 48000}); err != nil {
		t.Fatal(err)
	}
	if err := o.Put(floats(1, 1, 2, 2, 3, 3)); err != nil {
		t.Fatal(err)
	}
	if o.Queued() != 2*8 {
		t.Fatalf("queued = %d, want 16", o.Queued())
	}

	p := make([]byte, 24)
	n, err := o.Read(p)
	if err != nil || n != 24 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	got := decodeFloats(p)
	want := []float32{1, 1, 2, 2, 0, 0}
	for i := range want {
		if !approx(got[i], want[i]) {
			t.Fatalf("read %v, want %v with silence padding", got, want)
		}
	}
	if o.Queued() != 0 {
		t.Errorf("queued = %d after read", o.Queued())
	}
}

func TestOutput_ClearAndResume(t *testing.T) {
	o := newOutput(DeviceSpec{Rate: 48000, Channels: 2}, mocks.NewLogger())
	fp := &fakePlayer{}
	o.player = fp

	o.SetFormat(ports.AudioSpec{Channels: 1, Freq: 48000})
	o.Put(floats(1, 2, 3, 4))
	if err := o.Clear(); err != nil {
		t.Fatal(err)
	}
	if o.Queued() != 0 {
		t.Errorf("queued = %d after Clear", o.Queued())
	}

	o.Resume()
	o.Resume()
	if fp.plays != 1 {
		t.Errorf("Play called %d times, want 1", fp.plays)
	}

	o.Close()
	o.Close()
	if !fp.closed {
		t.Error("player not closed")
	}
	if err := o.Resume(); err == nil {
		t.Error("Resume after Close should fail")
	}
}

func TestOutput_Silent(t *testing.T) {
	o := NewSilent(DeviceSpec{Rate: 48000, Channels: 2}, mocks.NewLogger())
	if err := o.SetFormat(ports.AudioSpec{Channels: 2, Freq: 44100}); err != nil {
		t.Fatal(err)
	}
	if err := o.Resume(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if err := o.Put(floats(1, 1, 1, 1)); err != nil {
			t.Fatal(err)
		}
	}
	if o.Queued() != 0 {
		t.Errorf("silent output queued %d bytes", o.Queued())
	}
	if err := o.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutput_ResumeReadsInsidePlay(t *testing.T) {
	o := newOutput(DeviceSpec{Rate: 48000, Channels: 1}, mocks.NewLogger())
	fp := &fakePlayer{}
	o.player = fp

	if err := o.SetFormat(ports.AudioSpec{Channels: 1, Freq: 48000}); err != nil {
		t.Fatal(err)
	}
	o.Put(floats(1, 2, 3))

	// The backend pulls samples synchronously from within Play.
	var read int
	fp.onPlay = func() {
		buf := make([]byte, 64)
		read, _ = o.Read(buf)
	}

	done := make(chan error, 1)
	go func() { done <- o.Resume() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Resume failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Resume blocked while the player read from the output")
	}

	if fp.plays != 1 || read != 64 {
		t.Errorf("plays = %d, read = %d", fp.plays, read)
	}
	if o.Queued() != 0 {
		t.Errorf("queued = %d after the inline read", o.Queued())
	}
}
