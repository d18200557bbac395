package playback

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/user/ornament/pkg/host"
	"github.com/user/ornament/pkg/ports"
	"github.com/user/ornament/pkg/session"
)

// Metadata identifies the application in logs.
type Metadata struct {
	Name       string
	Version    string
	Identifier string
}

// Config holds the player settings.
type Config struct {
	Metadata    Metadata
	MediaPath   string
	Decode      session.Options
	PumpFrames  int
	FlushOnLoop bool
}

// Deps are the collaborators the player opens during Init.
type Deps struct {
	FS     ports.FileSystem
	Engine ports.DecodeEngine
	Alloc  ports.Allocator

	// OpenPresenter creates the presentation surface.
	OpenPresenter func() (ports.Presenter, error)

	// OpenAudio opens the default playback stream.
	OpenAudio func() (ports.AudioOutput, error)

	// Now returns monotonic milliseconds. Defaults to SystemTicks().
	Now func() uint64

	Log ports.Logger
}

// SystemTicks returns a monotonic millisecond counter starting at zero.
func SystemTicks() func() uint64 {
	start := time.Now()
	return func() uint64 {
		return uint64(time.Since(start).Milliseconds())
	}
}

var black = color.RGBA{A: 255}

// Player is the application state owned by the host loop.
type Player struct {
	cfg  Config
	deps Deps
	log  ports.Logger

	presenter ports.Presenter
	audio     ports.AudioOutput
	source    Source

	clock     *Clock
	scheduler *Scheduler
	feeder    *AudioFeeder
	idle      *IdleAnimator
}

// NewPlayer creates a player. Nothing is opened until Init.
func NewPlayer(cfg Config, deps Deps) *Player {
	if deps.Now == nil {
		deps.Now = SystemTicks()
	}
	if cfg.PumpFrames <= 0 {
		cfg.PumpFrames = 5
	}
	return &Player{
		cfg:  cfg,
		deps: deps,
		log:  deps.Log.WithComponent("player"),
		idle: NewIdleAnimator(),
	}
}

// Init opens the surface, starts decoding the media file and opens audio.
func (p *Player) Init(ctx context.Context) error {
	md := p.cfg.Metadata
	p.log.Info("%s %s (%s)", md.Name, md.Version, md.Identifier)

	presenter, err := p.deps.OpenPresenter()
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	p.presenter = presenter

	if err := p.presenter.Clear(black); err != nil {
		return fmt.Errorf("clear window: %w", err)
	}
	if err := p.presenter.Present(); err != nil {
		return fmt.Errorf("present window: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := p.deps.FS.Open(p.cfg.MediaPath)
	if err != nil {
		return fmt.Errorf("open media: %w", err)
	}
	sess, err := session.Start(src, p.deps.Engine, p.cfg.Decode, p.deps.Alloc, p.deps.Log)
	if err != nil {
		return fmt.Errorf("setup movie %s: %w", p.cfg.MediaPath, err)
	}
	p.source = sess
	p.log.Info("Playing %s", p.cfg.MediaPath)

	audio, err := p.deps.OpenAudio()
	if err != nil {
		return fmt.Errorf("initialize audio: %w", err)
	}
	p.audio = audio

	p.wire()
	return nil
}

func (p *Player) wire() {
	p.clock = NewClock(p.source, p.deps.Log)
	p.scheduler = NewScheduler(p.source, p.presenter, p.deps.Log)
	p.feeder = NewAudioFeeder(p.source, p.audio, p.deps.Log)

	// The last frame of a pass sits in the pending slot after the decoder
	// reports exhaustion; it is shown before the stream loops.
	p.clock.HoldWhile(func() bool {
		_, ok := p.scheduler.Pending()
		return ok
	})
	p.clock.OnRestart(p.scheduler.Reset)
	if p.cfg.FlushOnLoop {
		p.clock.OnRestart(p.feeder.Flush)
	}
}

// Iterate runs one scheduling step and presents the result.
func (p *Player) Iterate() host.Result {
	if p.source != nil {
		now := p.clock.Advance(p.deps.Now())
		p.source.Pump(p.cfg.PumpFrames)
		p.scheduler.Update(now)
		p.feeder.Feed()
	}

	if err := p.render(); err != nil {
		p.log.Error("Render failed: %v", err)
		return host.Failure
	}
	return host.Continue
}

func (p *Player) render() error {
	tex := p.Texture()
	if tex == nil {
		if err := p.presenter.Clear(p.idle.Color(p.idle.Step())); err != nil {
			return err
		}
	} else {
		if err := p.presenter.Clear(black); err != nil {
			return err
		}
		if err := p.presenter.DrawTexture(tex); err != nil {
			return err
		}
	}
	return p.presenter.Present()
}

// Event ends the loop on a quit request or the Escape key.
func (p *Player) Event(ev ports.Event) host.Result {
	switch {
	case ev.Kind == ports.EventQuit:
		p.log.Debug("Quit requested")
		return host.Success
	case ev.Kind == ports.EventKeyDown && ev.Key == ports.KeyEscape:
		p.log.Debug("Escape pressed")
		return host.Success
	}
	return host.Continue
}

// Quit releases the pending frame, stops decoding and closes the outputs, in
// that order.
func (p *Player) Quit(result host.Result) {
	var errs []error

	if p.scheduler != nil {
		p.scheduler.Reset()
		st := p.scheduler.Stats()
		p.log.Info("Presented %d frames, dropped %d, %d loops", st.Presented, st.Dropped, p.clock.Loops())
	}
	if p.source != nil {
		if err := p.source.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop session: %w", err))
		}
	}
	if p.audio != nil {
		if err := p.audio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close audio: %w", err))
		}
	}
	if p.scheduler != nil {
		p.scheduler.Close()
	}
	if p.presenter != nil {
		if err := p.presenter.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close window: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		p.log.Warn("Teardown: %v", err)
	}
	p.log.Debug("Player stopped (%s)", result)
}

// Texture returns the presented image, or nil while idle.
func (p *Player) Texture() ports.Texture {
	if p.scheduler == nil {
		return nil
	}
	return p.scheduler.Texture()
}

// Scheduler exposes the frame scheduler for diagnostics.
func (p *Player) Scheduler() *Scheduler { return p.scheduler }

// Clock exposes the playback clock for diagnostics.
func (p *Player) Clock() *Clock { return p.clock }

// Feeder exposes the audio feeder for diagnostics.
func (p *Player) Feeder() *AudioFeeder { return p.feeder }

// Idle exposes the idle animator for diagnostics.
func (p *Player) Idle() *IdleAnimator { return p.idle }

var _ host.App = (*Player)(nil)
