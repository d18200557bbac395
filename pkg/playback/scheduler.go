package playback

import (
	"github.com/user/ornament/pkg/ports"
)

// Stats counts what the scheduler did with the frames it pulled.
type Stats struct {
	Presented int
	Dropped   int
}

// Scheduler decides which decoded frame is on screen. At most one frame is held
// ahead of its deadline; frames that are already overdue when pulled are
// dropped in favor of the newest overdue one.
type Scheduler struct {
	src       FrameSource
	presenter ports.Presenter
	texture   ports.Texture
	pending   pendingSlot
	stats     Stats
	log       ports.Logger
}

// NewScheduler creates a scheduler that pulls from src and draws through presenter.
func NewScheduler(src FrameSource, presenter ports.Presenter, log ports.Logger) *Scheduler {
	return &Scheduler{
		src:       src,
		presenter: presenter,
		log:       log.WithComponent("scheduler"),
	}
}

// Update runs one scheduling step at playback time now.
func (s *Scheduler) Update(now uint64) {
	if f, ok := s.pending.peek(); ok && f.PlayMs <= now {
		s.pending.take()
		s.present(f)
	}

	if s.pending.occupied() {
		return
	}

	var late *ports.VideoFrame
	for {
		f, ok := s.src.NextVideoFrame().Get()
		if !ok {
			break
		}
		s.ensureTexture(f)

		if f.PlayMs >= now {
			s.pending.put(f)
			break
		}

		if late != nil {
			s.drop(late)
		}
		late = f
	}

	// The newest overdue frame is still the best match for now.
	if late != nil {
		s.present(late)
	}
}

func (s *Scheduler) ensureTexture(f *ports.VideoFrame) {
	if s.texture != nil {
		return
	}
	t, err := s.presenter.CreateTexture(f.Width, f.Height, f.Format)
	if err != nil {
		s.log.Error("Failed to create texture %dx%d: %v", f.Width, f.Height, err)
		return
	}
	s.texture = t
	s.log.Debug("Created %s texture %dx%d", f.Format, f.Width, f.Height)
}

func (s *Scheduler) present(f *ports.VideoFrame) {
	s.ensureTexture(f)
	if s.texture != nil {
		if err := s.texture.Update(f.Pixels, f.Format.Pitch(f.Width)); err != nil {
			s.log.Warn("Failed to update texture: %v", err)
		}
	}
	s.stats.Presented++
	s.release(f)
}

func (s *Scheduler) drop(f *ports.VideoFrame) {
	s.stats.Dropped++
	s.log.Debug("Dropped late frame at %d ms", f.PlayMs)
	s.release(f)
}

func (s *Scheduler) release(f *ports.VideoFrame) {
	if err := s.src.ReleaseVideoFrame(f); err != nil {
		s.log.Warn("Failed to release frame: %v", err)
	}
}

// Texture returns the presented image, or nil before the first frame arrived.
func (s *Scheduler) Texture() ports.Texture {
	return s.texture
}

// Pending reports the deadline of the frame held ahead, if any.
func (s *Scheduler) Pending() (uint64, bool) {
	f, ok := s.pending.peek()
	if !ok {
		return 0, false
	}
	return f.PlayMs, true
}

// Stats returns the presentation counters.
func (s *Scheduler) Stats() Stats {
	return s.stats
}

// Reset releases the pending frame without presenting it.
func (s *Scheduler) Reset() {
	if f, ok := s.pending.take(); ok {
		s.release(f)
	}
}

// Close releases the pending frame and destroys the presented image.
func (s *Scheduler) Close() {
	s.Reset()
	if s.texture != nil {
		if err := s.texture.Destroy(); err != nil {
			s.log.Warn("Failed to destroy texture: %v", err)
		}
		s.texture = nil
	}
}
