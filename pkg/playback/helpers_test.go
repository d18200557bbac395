package playback

import (
	"testing"

	"github.com/user/ornament/pkg/mocks"
	"github.com/user/ornament/pkg/ports"
	"github.com/user/ornament/pkg/session"
)

func newSession(t *testing.T) (*session.Session, *mocks.Decoder) {
	t.Helper()
	dec := mocks.NewDecoder()
	s, err := session.Start(mocks.NewStream([]byte("media")), mocks.NewDecodeEngine(dec),
		session.Options{FrameRate: 30, PixelFormat: ports.PixelFormatIYUV, Threads: 1}, nil, mocks.NewLogger())
	if err != nil {
		t.Fatalf("session.Start failed: %v", err)
	}
	return s, dec
}

// queueFrames queues 4x4 frames at the given times, tagging each frame's first
// pixel with its position.
func queueFrames(dec *mocks.Decoder, times ...uint64) []*ports.VideoFrame {
	frames := make([]*ports.VideoFrame, len(times))
	for i, ms := range times {
		frames[i] = dec.QueueFrame(ms, 4, 4)
		frames[i].Pixels[0] = byte(i + 1)
	}
	return frames
}

func freed(dec *mocks.Decoder, f *ports.VideoFrame) int {
	n := 0
	for _, g := range dec.FreedVideo {
		if g == f {
			n++
		}
	}
	return n
}
