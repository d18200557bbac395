package playback

import (
	"github.com/samber/mo"

	"github.com/user/ornament/pkg/ports"
)

// Clock turns wall-clock milliseconds into stream-relative playback time and
// restarts the stream when it runs out.
type Clock struct {
	src       ClockSource
	origin    mo.Option[uint64]
	loops     int
	onRestart []func()
	holds     []func() bool
	log       ports.Logger
}

// NewClock creates a clock over src. The origin stays unset until src reports
// initialized.
func NewClock(src ClockSource, log ports.Logger) *Clock {
	return &Clock{
		src:    src,
		origin: mo.None[uint64](),
		log:    log.WithComponent("clock"),
	}
}

// OnRestart registers fn to run after every loop restart.
func (c *Clock) OnRestart(fn func()) {
	c.onRestart = append(c.onRestart, fn)
}

// HoldWhile delays the restart of an exhausted stream while fn reports true.
func (c *Clock) HoldWhile(fn func() bool) {
	c.holds = append(c.holds, fn)
}

func (c *Clock) held() bool {
	for _, fn := range c.holds {
		if fn() {
			return true
		}
	}
	return false
}

// Advance returns the playback time at nowMs.
func (c *Clock) Advance(nowMs uint64) uint64 {
	if c.origin.IsAbsent() && c.src.IsInitialized() {
		c.origin = mo.Some(nowMs)
	}

	if !c.src.IsActive() && !c.held() {
		c.restart(nowMs)
	}

	origin, ok := c.origin.Get()
	if !ok || nowMs < origin {
		return 0
	}
	return nowMs - origin
}

func (c *Clock) restart(nowMs uint64) {
	if err := c.src.Seek(0); err != nil {
		c.log.Error("Failed to restart stream: %v", err)
	}
	c.origin = mo.Some(nowMs)
	c.loops++
	c.log.Debug("Stream restarted (loop %d)", c.loops)

	for _, fn := range c.onRestart {
		fn()
	}
}

// Origin returns the wall-clock time playback started at, if set.
func (c *Clock) Origin() mo.Option[uint64] {
	return c.origin
}

// Loops returns the number of restarts so far.
func (c *Clock) Loops() int {
	return c.loops
}
