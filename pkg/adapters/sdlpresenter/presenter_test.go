package sdlpresenter

import (
	"os"
	"testing"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/user/ornament/pkg/mocks"
	"github.com/user/ornament/pkg/ports"
)

func TestSDLFormat(t *testing.T) {
	tests := []struct {
		in   ports.PixelFormat
		want uint32
	}{
		{ports.PixelFormatIYUV, uint32(sdl.PIXELFORMAT_IYUV)},
		{ports.PixelFormatYV12, uint32(sdl.PIXELFORMAT_YV12)},
		{ports.PixelFormatRGBA, uint32(sdl.PIXELFORMAT_RGBA32)},
	}
	for _, tt := range tests {
		if got := sdlFormat(tt.in); got != tt.want {
			t.Errorf("sdlFormat(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestPresenter_Window opens a real window. Skipped without a display.
func TestPresenter_Window(t *testing.T) {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		t.Skip("no display")
	}

	p, err := Open(Options{Title: "test", Width: 64, Height: 64}, mocks.NewLogger())
	if err != nil {
		t.Skipf("cannot open window: %v", err)
	}
	defer p.Close()

	tex, err := p.CreateTexture(16, 16, ports.PixelFormatIYUV)
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer tex.Destroy()

	if err := tex.Update(make([]byte, ports.PixelFormatIYUV.FrameSize(16, 16)), 16); err != nil {
		t.Errorf("Update failed: %v", err)
	}
	if err := tex.Update(make([]byte, 10), 16); err == nil {
		t.Error("expected error for a short frame")
	}
	if err := p.DrawTexture(tex); err != nil {
		t.Errorf("DrawTexture failed: %v", err)
	}
	if err := p.Present(); err != nil {
		t.Errorf("Present failed: %v", err)
	}
}
