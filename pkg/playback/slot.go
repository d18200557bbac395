package playback

import (
	"github.com/samber/mo"

	"github.com/user/ornament/pkg/ports"
)

// pendingSlot holds at most one video frame waiting for its deadline.
type pendingSlot struct {
	frame mo.Option[*ports.VideoFrame]
}

// put stores f. Putting into an occupied slot is a programming error.
func (s *pendingSlot) put(f *ports.VideoFrame) {
	if s.frame.IsPresent() {
		panic("playback: pending frame slot already occupied")
	}
	s.frame = mo.Some(f)
}

// take empties the slot and transfers the frame to the caller.
func (s *pendingSlot) take() (*ports.VideoFrame, bool) {
	f, ok := s.frame.Get()
	s.frame = mo.None[*ports.VideoFrame]()
	return f, ok
}

func (s *pendingSlot) peek() (*ports.VideoFrame, bool) {
	return s.frame.Get()
}

func (s *pendingSlot) occupied() bool {
	return s.frame.IsPresent()
}
