// Package ggpresenter provides an offscreen presenter using the gg library.
// It backs headless runs: frames are composed on a gg canvas, paced to a fixed
// refresh rate and optionally written out through a snapshot sink.
package ggpresenter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/ornament/pkg/ports"
)

// ErrForeignTexture is returned when drawing a texture created elsewhere.
var ErrForeignTexture = errors.New("ggpresenter: texture not created by this presenter")

// Options configures the presenter.
type Options struct {
	Width  int
	Height int

	// RefreshHz paces Present. 0 disables pacing.
	RefreshHz int

	// Sink receives every SnapshotEvery-th presented surface.
	Sink          ports.SnapshotSink
	SnapshotEvery int
}

// Presenter implements ports.Presenter on a gg.Context.
type Presenter struct {
	dc       *gg.Context
	opts     Options
	ticker   *time.Ticker
	presents int
	log      ports.Logger
}

// New creates a new Presenter.
func New(opts Options, log ports.Logger) *Presenter {
	p := &Presenter{
		dc:   gg.NewContext(opts.Width, opts.Height),
		opts: opts,
		log:  log.WithComponent("presenter"),
	}
	if opts.RefreshHz > 0 {
		p.ticker = time.NewTicker(time.Second / time.Duration(opts.RefreshHz))
	}
	p.log.Debug("Headless surface %dx%d at %d Hz", opts.Width, opts.Height, opts.RefreshHz)
	return p
}

// Size returns the surface dimensions.
func (p *Presenter) Size() (int, int) {
	return p.opts.Width, p.opts.Height
}

// CreateTexture creates an image matching the pixel format.
func (p *Presenter) CreateTexture(width, height int, format ports.PixelFormat) (ports.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ggpresenter: invalid texture size %dx%d", width, height)
	}
	rect := image.Rect(0, 0, width, height)
	t := &Texture{format: format}
	if format == ports.PixelFormatRGBA {
		t.img = image.NewRGBA(rect)
	} else {
		t.img = image.NewYCbCr(rect, image.YCbCrSubsampleRatio420)
	}
	return t, nil
}

// Clear fills the surface.
func (p *Presenter) Clear(c color.RGBA) error {
	p.dc.SetColor(c)
	p.dc.Clear()
	return nil
}

// DrawTexture stretches t over the whole surface.
func (p *Presenter) DrawTexture(t ports.Texture) error {
	tex, ok := t.(*Texture)
	if !ok {
		return ErrForeignTexture
	}
	dst, ok := p.dc.Image().(draw.Image)
	if !ok {
		return fmt.Errorf("ggpresenter: canvas is not drawable")
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), tex.img, tex.img.Bounds(), draw.Src, nil)
	return nil
}

// Present waits for the next refresh tick and snapshots the surface when due.
func (p *Presenter) Present() error {
	if p.ticker != nil {
		<-p.ticker.C
	}
	p.presents++

	sink := p.opts.Sink
	if sink == nil || !sink.Enabled() || p.opts.SnapshotEvery <= 0 || p.presents%p.opts.SnapshotEvery != 0 {
		return nil
	}
	if err := sink.SaveSnapshot(p.presents/p.opts.SnapshotEvery, p.Snapshot()); err != nil {
		p.log.Warn("Failed to save snapshot: %v", err)
	}
	return nil
}

// Snapshot returns a copy of the composed surface.
func (p *Presenter) Snapshot() image.Image {
	src := p.dc.Image()
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// Presents returns how many times Present was called.
func (p *Presenter) Presents() int {
	return p.presents
}

// PollEvent reports no events; an offscreen surface has no input.
func (p *Presenter) PollEvent() (ports.Event, bool) {
	return ports.Event{}, false
}

// Close stops pacing.
func (p *Presenter) Close() error {
	if p.ticker != nil {
		p.ticker.Stop()
	}
	return nil
}

// Ensure Presenter implements ports.Presenter and ports.EventSource
var (
	_ ports.Presenter   = (*Presenter)(nil)
	_ ports.EventSource = (*Presenter)(nil)
)

// Texture is an in-memory image receiving decoded frames.
type Texture struct {
	img    image.Image
	format ports.PixelFormat
}

func (t *Texture) Width() int  { return t.img.Bounds().Dx() }
func (t *Texture) Height() int { return t.img.Bounds().Dy() }

// Update copies planar YUV or packed RGBA pixels into the image. pitch is the
// row length of the first plane; chroma rows are half of it, rounded up.
func (t *Texture) Update(pixels []byte, pitch int) error {
	w, h := t.Width(), t.Height()

	switch img := t.img.(type) {
	case *image.RGBA:
		if pitch < w*4 || len(pixels) < pitch*(h-1)+w*4 {
			return fmt.Errorf("ggpresenter: short RGBA frame (%d bytes, pitch %d)", len(pixels), pitch)
		}
		copyPlane(img.Pix, img.Stride, pixels, pitch, w*4, h)

	case *image.YCbCr:
		cw, ch := (w+1)/2, (h+1)/2
		cpitch := (pitch + 1) / 2
		ySize := pitch * h
		cSize := cpitch * ch
		if pitch < w || len(pixels) < ySize+2*cSize {
			return fmt.Errorf("ggpresenter: short YUV frame (%d bytes, pitch %d)", len(pixels), pitch)
		}
		first, second := pixels[ySize:ySize+cSize], pixels[ySize+cSize:ySize+2*cSize]
		cb, cr := first, second
		if t.format == ports.PixelFormatYV12 {
			cb, cr = second, first
		}
		copyPlane(img.Y, img.YStride, pixels, pitch, w, h)
		copyPlane(img.Cb, img.CStride, cb, cpitch, cw, ch)
		copyPlane(img.Cr, img.CStride, cr, cpitch, cw, ch)
	}
	return nil
}

func copyPlane(dst []byte, dstStride int, src []byte, srcStride, rowLen, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*dstStride:y*dstStride+rowLen], src[y*srcStride:y*srcStride+rowLen])
	}
}

// Image returns the texture contents.
func (t *Texture) Image() image.Image {
	return t.img
}

// Destroy releases nothing; the image is garbage collected.
func (t *Texture) Destroy() error {
	return nil
}

var _ ports.Texture = (*Texture)(nil)
