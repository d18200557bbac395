package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/user/ornament/pkg/ports"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Window.Width != 240 || cfg.Window.Height != 240 || !cfg.Window.Fullscreen {
		t.Errorf("window = %+v", cfg.Window)
	}
	if cfg.Window.Title != "Ornament Player" {
		t.Errorf("title = %q", cfg.Window.Title)
	}
	if cfg.Decode.FPS != 30 || cfg.Decode.Threads != 1 || cfg.Decode.PumpFrames != 5 {
		t.Errorf("decode = %+v", cfg.Decode)
	}
	if cfg.SessionOptions().PixelFormat != ports.PixelFormatIYUV {
		t.Error("default pixel format is not IYUV")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadFromFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	yml := `
media:
  file: clip.mp4
  base_dir: /srv/kiosk
window:
  width: 480
decode:
  pixel_format: rgba
audio:
  flush_on_loop: false
log_level: debug
`
	if err := afero.WriteFile(fs, "/etc/ornament.yaml", []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFS(fs, "/etc/ornament.yaml")
	if err != nil {
		t.Fatalf("LoadFromFS failed: %v", err)
	}

	if cfg.Window.Width != 480 || cfg.Window.Height != 240 {
		t.Errorf("window %dx%d, want overlay on defaults", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.SessionOptions().PixelFormat != ports.PixelFormatRGBA {
		t.Error("pixel format not applied")
	}
	if cfg.Audio.FlushOnLoop || cfg.LogLevel != "debug" {
		t.Errorf("audio = %+v, log level %q", cfg.Audio, cfg.LogLevel)
	}
	path, err := cfg.MediaPath()
	if err != nil || path != filepath.Join("/srv/kiosk", "clip.mp4") {
		t.Errorf("MediaPath = %q, %v", path, err)
	}
}

func TestLoadFromFS_Errors(t *testing.T) {
	fs := afero.NewMemMapFs()
	if _, err := LoadFromFS(fs, "/missing.yaml"); err == nil {
		t.Error("expected error for missing file")
	}

	afero.WriteFile(fs, "/bad.yaml", []byte("window: [1, 2"), 0644)
	if _, err := LoadFromFS(fs, "/bad.yaml"); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }, "window size"},
		{"zero fps", func(c *Config) { c.Decode.FPS = 0 }, "decode.fps"},
		{"bad pixel format", func(c *Config) { c.Decode.PixelFormat = "nv12" }, "pixel_format"},
		{"no pump budget", func(c *Config) { c.Decode.PumpFrames = 0 }, "pump_frames"},
		{"surround device", func(c *Config) { c.Audio.DeviceChannels = 6 }, "device_channels"},
		{"empty media", func(c *Config) { c.Media.File = "" }, "media.file"},
		{"headless refresh", func(c *Config) { c.Headless.Enabled = true; c.Headless.RefreshHz = 0 }, "refresh_hz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestMediaPath_Absolute(t *testing.T) {
	cfg := Defaults()
	cfg.Media.File = "/media/loop.webm"
	cfg.Media.BaseDir = "/ignored"
	if path, _ := cfg.MediaPath(); path != "/media/loop.webm" {
		t.Errorf("MediaPath = %q", path)
	}
}

func TestMediaPath_ExecutableDir(t *testing.T) {
	cfg := Defaults()
	path, err := cfg.MediaPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "ornament.webm" || !filepath.IsAbs(path) {
		t.Errorf("MediaPath = %q", path)
	}
}

func TestToPlayerConfig(t *testing.T) {
	cfg := Defaults()
	pc := cfg.ToPlayerConfig("/x/ornament.webm")
	if pc.MediaPath != "/x/ornament.webm" || pc.PumpFrames != 5 || !pc.FlushOnLoop {
		t.Errorf("player config = %+v", pc)
	}
	if pc.Metadata.Name != AppName || pc.Decode.FrameRate != 30 {
		t.Errorf("player config = %+v", pc)
	}
	if cfg.MemoryBudget() != 256<<20 {
		t.Errorf("MemoryBudget = %d", cfg.MemoryBudget())
	}
}
