// Package sdlpresenter presents frames in an SDL2 window and reads its input events.
package sdlpresenter

import (
	"fmt"
	"image/color"
	"runtime"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/user/ornament/pkg/ports"
)

// SDL must be driven from the main OS thread.
func init() {
	runtime.LockOSThread()
}

// Options configures the window.
type Options struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Presenter implements ports.Presenter and ports.EventSource on an SDL window.
type Presenter struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	width    int
	height   int
	log      ports.Logger
}

// Open initializes SDL video, creates the window and renderer and hides the cursor.
func Open(opts Options, log ports.Logger) (*Presenter, error) {
	log = log.WithComponent("presenter")

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("initialize SDL: %w", err)
	}

	var flags uint32 = sdl.WINDOW_SHOWN
	if opts.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN
	}
	window, err := sdl.CreateWindow(opts.Title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(opts.Width), int32(opts.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("create window: %w", err)
	}

	var rflags uint32 = sdl.RENDERER_ACCELERATED
	if opts.VSync {
		rflags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rflags)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	if _, err := sdl.ShowCursor(sdl.DISABLE); err != nil {
		log.Warn("Failed to hide cursor: %v", err)
	}

	log.Debug("Window %dx%d (fullscreen=%v, vsync=%v)", opts.Width, opts.Height, opts.Fullscreen, opts.VSync)
	return &Presenter{
		window:   window,
		renderer: renderer,
		width:    opts.Width,
		height:   opts.Height,
		log:      log,
	}, nil
}

func (p *Presenter) Size() (int, int) {
	return p.width, p.height
}

// CreateTexture creates a streaming texture.
func (p *Presenter) CreateTexture(width, height int, format ports.PixelFormat) (ports.Texture, error) {
	tex, err := p.renderer.CreateTexture(sdlFormat(format), sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	return &Texture{tex: tex, width: width, height: height, format: format}, nil
}

func sdlFormat(f ports.PixelFormat) uint32 {
	switch f {
	case ports.PixelFormatYV12:
		return uint32(sdl.PIXELFORMAT_YV12)
	case ports.PixelFormatRGBA:
		return uint32(sdl.PIXELFORMAT_RGBA32)
	default:
		return uint32(sdl.PIXELFORMAT_IYUV)
	}
}

func (p *Presenter) Clear(c color.RGBA) error {
	if err := p.renderer.SetDrawColor(c.R, c.G, c.B, c.A); err != nil {
		return err
	}
	return p.renderer.Clear()
}

// DrawTexture copies t over the whole window.
func (p *Presenter) DrawTexture(t ports.Texture) error {
	tex, ok := t.(*Texture)
	if !ok {
		return fmt.Errorf("sdlpresenter: texture not created by this presenter")
	}
	return p.renderer.Copy(tex.tex, nil, nil)
}

// Present shows the frame. With vsync it blocks until the next refresh.
func (p *Presenter) Present() error {
	p.renderer.Present()
	return nil
}

// PollEvent translates pending SDL events.
func (p *Presenter) PollEvent() (ports.Event, bool) {
	for {
		ev := sdl.PollEvent()
		if ev == nil {
			return ports.Event{}, false
		}
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			return ports.Event{Kind: ports.EventQuit}, true
		case *sdl.KeyboardEvent:
			if e.Type != sdl.KEYDOWN {
				continue
			}
			key := ports.KeyUnknown
			if e.Keysym.Sym == sdl.K_ESCAPE {
				key = ports.KeyEscape
			}
			return ports.Event{Kind: ports.EventKeyDown, Key: key}, true
		}
	}
}

// Close destroys the renderer and window and shuts SDL down.
func (p *Presenter) Close() error {
	var firstErr error
	if err := p.renderer.Destroy(); err != nil {
		firstErr = err
	}
	if err := p.window.Destroy(); err != nil && firstErr == nil {
		firstErr = err
	}
	sdl.Quit()
	return firstErr
}

var (
	_ ports.Presenter   = (*Presenter)(nil)
	_ ports.EventSource = (*Presenter)(nil)
)

// Texture wraps a streaming SDL texture.
type Texture struct {
	tex    *sdl.Texture
	width  int
	height int
	format ports.PixelFormat
}

func (t *Texture) Width() int  { return t.width }
func (t *Texture) Height() int { return t.height }

// Update uploads a frame. Planar YUV goes through SDL_UpdateYUVTexture; packed
// RGBA is copied row by row into the locked texture.
func (t *Texture) Update(pixels []byte, pitch int) error {
	if len(pixels) < t.format.FrameSize(t.width, t.height) {
		return fmt.Errorf("sdlpresenter: short frame (%d bytes)", len(pixels))
	}

	if t.format == ports.PixelFormatRGBA {
		return t.updateLocked(pixels, pitch)
	}

	cpitch := (pitch + 1) / 2
	ySize := pitch * t.height
	cSize := cpitch * ((t.height + 1) / 2)
	y := pixels[:ySize]
	first := pixels[ySize : ySize+cSize]
	second := pixels[ySize+cSize : ySize+2*cSize]
	u, v := first, second
	if t.format == ports.PixelFormatYV12 {
		u, v = second, first
	}
	return t.tex.UpdateYUV(nil, y, pitch, u, cpitch, v, cpitch)
}

func (t *Texture) updateLocked(pixels []byte, pitch int) error {
	dst, dstPitch, err := t.tex.Lock(nil)
	if err != nil {
		return fmt.Errorf("lock texture: %w", err)
	}
	defer t.tex.Unlock()

	row := t.width * 4
	for y := 0; y < t.height; y++ {
		copy(dst[y*dstPitch:y*dstPitch+row], pixels[y*pitch:y*pitch+row])
	}
	return nil
}

func (t *Texture) Destroy() error {
	return t.tex.Destroy()
}

var _ ports.Texture = (*Texture)(nil)
