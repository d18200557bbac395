// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/user/ornament/pkg/playback"
	"github.com/user/ornament/pkg/ports"
	"github.com/user/ornament/pkg/session"
)

// Application metadata.
const (
	AppName       = "Ornament Player"
	AppVersion    = "1.0"
	AppIdentifier = "org.ornament.player"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("config: invalid")

// Config represents the full configuration for ornament.
type Config struct {
	Media    MediaConfig    `yaml:"media"`
	Window   WindowConfig   `yaml:"window"`
	Decode   DecodeConfig   `yaml:"decode"`
	Audio    AudioConfig    `yaml:"audio"`
	Memory   MemoryConfig   `yaml:"memory"`
	Headless HeadlessConfig `yaml:"headless"`
	LogLevel string         `yaml:"log_level"`
}

// MediaConfig selects the file to play.
type MediaConfig struct {
	// File is resolved against BaseDir unless absolute.
	File string `yaml:"file"`
	// BaseDir defaults to the directory of the executable.
	BaseDir string `yaml:"base_dir"`
}

// WindowConfig represents the presentation window.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// DecodeConfig represents decoder settings.
type DecodeConfig struct {
	FPS               float64 `yaml:"fps"`
	Threads           int     `yaml:"threads"`
	PixelFormat       string  `yaml:"pixel_format"`
	PumpFrames        int     `yaml:"pump_frames"`
	MaxBufferedFrames int     `yaml:"max_buffered_frames"`
	AudioPacketFrames int     `yaml:"audio_packet_frames"`
	FFmpegPath        string  `yaml:"ffmpeg_path"`
}

// AudioConfig represents the output device.
type AudioConfig struct {
	// Enabled opens the output device. Disabled audio is decoded and discarded.
	Enabled        bool `yaml:"enabled"`
	DeviceRate     int  `yaml:"device_rate"`
	DeviceChannels int  `yaml:"device_channels"`
	FlushOnLoop    bool `yaml:"flush_on_loop"`
}

// MemoryConfig bounds decoder buffers.
type MemoryConfig struct {
	// BudgetMB is the decoder buffer budget. 0 means unlimited. Streams whose
	// decode buffers cannot fit are rejected at start.
	BudgetMB int `yaml:"budget_mb"`
}

// HeadlessConfig renders offscreen instead of opening a window.
type HeadlessConfig struct {
	Enabled       bool   `yaml:"enabled"`
	RefreshHz     int    `yaml:"refresh_hz"`
	SnapshotDir   string `yaml:"snapshot_dir"`
	SnapshotEvery int    `yaml:"snapshot_every"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Media: MediaConfig{
			File: "ornament.webm",
		},
		Window: WindowConfig{
			Title:      AppName,
			Width:      240,
			Height:     240,
			Fullscreen: true,
			VSync:      true,
		},
		Decode: DecodeConfig{
			FPS:               30,
			Threads:           1,
			PixelFormat:       "iyuv",
			PumpFrames:        5,
			MaxBufferedFrames: 30,
			AudioPacketFrames: 1024,
		},
		Audio: AudioConfig{
			Enabled:        true,
			DeviceRate:     48000,
			DeviceChannels: 2,
			FlushOnLoop:    true,
		},
		Memory: MemoryConfig{
			BudgetMB: 256,
		},
		Headless: HeadlessConfig{
			RefreshHz:     60,
			SnapshotEvery: 30,
		},
		LogLevel: "info",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	return LoadFromFS(afero.NewOsFs(), path)
}

// LoadFromFS loads configuration from a YAML file on fs, overlaying Defaults.
func LoadFromFS(fs afero.Fs, path string) (Config, error) {
	cfg := Defaults()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects settings the player cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
		}
	}

	check(c.Media.File != "", "media.file is empty")
	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Decode.FPS > 0, "decode.fps %v", c.Decode.FPS)
	check(c.Decode.Threads >= 0, "decode.threads %d", c.Decode.Threads)
	check(c.Decode.PumpFrames > 0, "decode.pump_frames %d", c.Decode.PumpFrames)
	check(c.Decode.MaxBufferedFrames > 0, "decode.max_buffered_frames %d", c.Decode.MaxBufferedFrames)
	check(c.Decode.AudioPacketFrames > 0, "decode.audio_packet_frames %d", c.Decode.AudioPacketFrames)
	check(validPixelFormat(c.Decode.PixelFormat), "decode.pixel_format %q", c.Decode.PixelFormat)
	check(c.Audio.DeviceRate > 0, "audio.device_rate %d", c.Audio.DeviceRate)
	check(c.Audio.DeviceChannels == 1 || c.Audio.DeviceChannels == 2, "audio.device_channels %d", c.Audio.DeviceChannels)
	check(c.Memory.BudgetMB >= 0, "memory.budget_mb %d", c.Memory.BudgetMB)
	if c.Headless.Enabled {
		check(c.Headless.RefreshHz > 0, "headless.refresh_hz %d", c.Headless.RefreshHz)
		check(c.Headless.SnapshotEvery >= 0, "headless.snapshot_every %d", c.Headless.SnapshotEvery)
	}

	return errors.Join(errs...)
}

func validPixelFormat(s string) bool {
	switch s {
	case "iyuv", "yv12", "rgba":
		return true
	}
	return false
}

// MediaPath resolves the media file against the base directory.
func (c Config) MediaPath() (string, error) {
	if filepath.IsAbs(c.Media.File) {
		return c.Media.File, nil
	}
	base := c.Media.BaseDir
	if base == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("resolve base path: %w", err)
		}
		base = filepath.Dir(exe)
	}
	return filepath.Join(base, c.Media.File), nil
}

// MemoryBudget returns the allocator budget in bytes.
func (c Config) MemoryBudget() int64 {
	return int64(c.Memory.BudgetMB) << 20
}

// SessionOptions converts the decode section to session options.
func (c Config) SessionOptions() session.Options {
	return session.Options{
		FrameRate:   c.Decode.FPS,
		PixelFormat: ports.ParsePixelFormat(c.Decode.PixelFormat),
		Threads:     c.Decode.Threads,
	}
}

// ToPlayerConfig converts Config to playback.Config.
func (c Config) ToPlayerConfig(mediaPath string) playback.Config {
	return playback.Config{
		Metadata: playback.Metadata{
			Name:       AppName,
			Version:    AppVersion,
			Identifier: AppIdentifier,
		},
		MediaPath:   mediaPath,
		Decode:      c.SessionOptions(),
		PumpFrames:  c.Decode.PumpFrames,
		FlushOnLoop: c.Audio.FlushOnLoop,
	}
}
