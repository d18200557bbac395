package mocks

import (
	"image/color"

	"github.com/user/ornament/pkg/ports"
)

// Op is one recorded presenter call.
type Op struct {
	Name    string
	Color   color.RGBA
	Texture *Texture
}

// Presenter is a mock implementation of ports.Presenter that records every call.
type Presenter struct {
	Width  int
	Height int

	CreateTextureFunc func(width, height int, format ports.PixelFormat) (ports.Texture, error)
	PresentFunc       func() error

	Ops      []Op
	Textures []*Texture
	Presents int
	Closed   bool
}

// NewPresenter creates a mock presenter with the given surface size.
func NewPresenter(width, height int) *Presenter {
	return &Presenter{Width: width, Height: height}
}

func (m *Presenter) Size() (int, int) {
	return m.Width, m.Height
}

func (m *Presenter) CreateTexture(width, height int, format ports.PixelFormat) (ports.Texture, error) {
	if m.CreateTextureFunc != nil {
		return m.CreateTextureFunc(width, height, format)
	}
	t := &Texture{W: width, H: height, Format: format}
	m.Textures = append(m.Textures, t)
	m.Ops = append(m.Ops, Op{Name: "create", Texture: t})
	return t, nil
}

func (m *Presenter) Clear(c color.RGBA) error {
	m.Ops = append(m.Ops, Op{Name: "clear", Color: c})
	return nil
}

func (m *Presenter) DrawTexture(t ports.Texture) error {
	tex, _ := t.(*Texture)
	m.Ops = append(m.Ops, Op{Name: "draw", Texture: tex})
	return nil
}

func (m *Presenter) Present() error {
	m.Presents++
	m.Ops = append(m.Ops, Op{Name: "present"})
	if m.PresentFunc != nil {
		return m.PresentFunc()
	}
	return nil
}

func (m *Presenter) Close() error {
	m.Closed = true
	return nil
}

// LastClear returns the color of the most recent Clear call.
func (m *Presenter) LastClear() (color.RGBA, bool) {
	for i := len(m.Ops) - 1; i >= 0; i-- {
		if m.Ops[i].Name == "clear" {
			return m.Ops[i].Color, true
		}
	}
	return color.RGBA{}, false
}

// Count returns how many calls named name were recorded.
func (m *Presenter) Count(name string) int {
	n := 0
	for _, op := range m.Ops {
		if op.Name == name {
			n++
		}
	}
	return n
}

// ResetOps forgets recorded calls.
func (m *Presenter) ResetOps() {
	m.Ops = nil
}

var _ ports.Presenter = (*Presenter)(nil)

// Texture is a mock implementation of ports.Texture.
type Texture struct {
	W      int
	H      int
	Format ports.PixelFormat

	UpdateFunc func(pixels []byte, pitch int) error

	Updates    int
	LastPixels []byte
	LastPitch  int
	Destroyed  bool
}

func (m *Texture) Width() int  { return m.W }
func (m *Texture) Height() int { return m.H }

func (m *Texture) Update(pixels []byte, pitch int) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(pixels, pitch)
	}
	m.Updates++
	m.LastPixels = append(m.LastPixels[:0], pixels...)
	m.LastPitch = pitch
	return nil
}

func (m *Texture) Destroy() error {
	m.Destroyed = true
	return nil
}

var _ ports.Texture = (*Texture)(nil)
