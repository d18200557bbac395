package main

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/user/ornament/pkg/adapters/logger"
	"github.com/user/ornament/pkg/config"
	"github.com/user/ornament/pkg/mocks"
	"github.com/user/ornament/pkg/ports"
)

func runLoadConfig(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	app := newApp()
	var cfg config.Config
	var loadErr error
	app.Action = func(c *cli.Context) error {
		cfg, loadErr = loadConfig(c)
		return nil
	}
	if err := app.Run(append([]string{"ornament"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return cfg, loadErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := runLoadConfig(t)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := config.Defaults()
	if cfg.Media.File != want.Media.File {
		t.Errorf("Media.File = %q, want %q", cfg.Media.File, want.Media.File)
	}
	if cfg.Headless.Enabled || !cfg.Audio.Enabled {
		t.Errorf("headless=%v audio=%v", cfg.Headless.Enabled, cfg.Audio.Enabled)
	}
}

func TestLoadConfig_Flags(t *testing.T) {
	cfg, err := runLoadConfig(t,
		"--headless", "--no-audio", "--log-level", "debug",
		"--snapshot-dir", "/tmp/shots", "clip.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"media", cfg.Media.File, "clip.mp4"},
		{"headless", cfg.Headless.Enabled, true},
		{"audio", cfg.Audio.Enabled, false},
		{"log level", cfg.LogLevel, "debug"},
		{"snapshot dir", cfg.Headless.SnapshotDir, "/tmp/shots"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadConfig_QuietWins(t *testing.T) {
	cfg, err := runLoadConfig(t, "--log-level", "debug", "--quiet")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "quiet" {
		t.Errorf("LogLevel = %q, want quiet", cfg.LogLevel)
	}
	if _, ok := newLogger(cfg.LogLevel).(*logger.NoopLogger); !ok {
		t.Error("quiet level should use the no-op logger")
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ornament.yaml")
	yaml := "media:\n  file: intro.webm\nwindow:\n  width: 640\n  height: 480\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := runLoadConfig(t, "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Media.File != "intro.webm" || cfg.Window.Width != 640 || cfg.Window.Height != 480 {
		t.Errorf("config not loaded: %+v", cfg)
	}

	// The positional argument overrides the file.
	cfg, err = runLoadConfig(t, "--config", path, "other.mp4")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Media.File != "other.mp4" {
		t.Errorf("Media.File = %q, want other.mp4", cfg.Media.File)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("decode:\n  fps: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runLoadConfig(t, "--config", path); err == nil {
		t.Error("expected validation error")
	}

	if _, err := runLoadConfig(t, "--config", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLazyEvents(t *testing.T) {
	e := &lazyEvents{}
	if _, ok := e.PollEvent(); ok {
		t.Error("event before presenter opened")
	}

	src := mocks.NewEventSource()
	src.Push(ports.Event{Kind: ports.EventQuit})
	e.src = src
	ev, ok := e.PollEvent()
	if !ok || ev.Kind != ports.EventQuit {
		t.Errorf("PollEvent = %+v, %v", ev, ok)
	}
}

func TestOpenAudio_Disabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.Audio.Enabled = false
	out, err := openAudio(cfg, mocks.NewLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if err := out.SetFormat(ports.AudioSpec{Channels: 2, Freq: 44100}); err != nil {
		t.Errorf("SetFormat failed: %v", err)
	}
}

// TestPlay_Headless plays a generated clip offscreen and checks snapshots are
// written. Skipped without ffmpeg.
func TestPlay_Headless(t *testing.T) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available")
	}

	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mp4")
	gen := exec.Command(ffmpeg, "-hide_banner", "-loglevel", "error",
		"-f", "lavfi", "-i", "testsrc=size=64x64:rate=30",
		"-t", "1", "-c:v", "mpeg4", "-movflags", "+faststart", clip)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Skipf("cannot generate test clip: %v: %s", err, out)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	shots := filepath.Join(dir, "out")
	err = newApp().RunContext(ctx, []string{"ornament",
		"--headless", "--no-audio", "--quiet", "--snapshot-dir", shots, clip})
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(shots, "snapshots"))
	if err != nil {
		t.Fatalf("no snapshots written: %v", err)
	}
	if len(entries) == 0 {
		t.Error("no snapshots written")
	}
}
