// Package main provides the CLI entry point for ornament.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/ornament/pkg/adapters/aferofs"
	"github.com/user/ornament/pkg/adapters/allocator"
	"github.com/user/ornament/pkg/adapters/ffmpegengine"
	"github.com/user/ornament/pkg/adapters/filesink"
	"github.com/user/ornament/pkg/adapters/ggpresenter"
	"github.com/user/ornament/pkg/adapters/logger"
	"github.com/user/ornament/pkg/adapters/nullsink"
	"github.com/user/ornament/pkg/adapters/otoaudio"
	"github.com/user/ornament/pkg/adapters/sdlpresenter"
	"github.com/user/ornament/pkg/config"
	"github.com/user/ornament/pkg/host"
	"github.com/user/ornament/pkg/playback"
	"github.com/user/ornament/pkg/ports"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %v", err))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "ornament",
		Usage:     l10n.T("Play a video file in a fullscreen loop"),
		ArgsUsage: "[MEDIA]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   l10n.T("YAML configuration file"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   l10n.T("Log level (debug, info, warn, error)"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   l10n.T("Suppress all log output"),
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: l10n.T("Render offscreen without opening a window"),
			},
			&cli.StringFlag{
				Name:  "snapshot-dir",
				Usage: l10n.T("Directory for headless snapshots"),
			},
			&cli.BoolFlag{
				Name:  "no-audio",
				Usage: l10n.T("Decode audio without opening the output device"),
			},
		},
		Action: play,
		Commands: []*cli.Command{
			{
				Name:  "version",
				Usage: l10n.T("Show version information"),
				Action: func(c *cli.Context) error {
					fmt.Println(l10n.F("ornament version %s", version))
					return nil
				},
			},
		},
	}
}

// loadConfig reads the optional config file and applies command-line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.Args().Present() {
		cfg.Media.File = c.Args().First()
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("quiet") {
		cfg.LogLevel = ports.LevelQuiet.String()
	}
	if c.Bool("headless") {
		cfg.Headless.Enabled = true
	}
	if c.IsSet("snapshot-dir") {
		cfg.Headless.SnapshotDir = c.String("snapshot-dir")
	}
	if c.Bool("no-audio") {
		cfg.Audio.Enabled = false
	}

	return cfg, cfg.Validate()
}

func newLogger(level string) ports.Logger {
	lv := ports.ParseLogLevel(level)
	if lv == ports.LevelQuiet {
		return logger.NewNoop()
	}
	return logger.NewConsole(lv)
}

func play(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	mediaPath, err := cfg.MediaPath()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn(l10n.T("Interrupted, shutting down..."))
			cancel()
		case <-ctx.Done():
		}
	}()

	fs := aferofs.New()
	events := &lazyEvents{}
	deps := playback.Deps{
		FS:     fs,
		Engine: ffmpegengine.New(engineOptions(cfg), log),
		Alloc:  allocator.New(cfg.MemoryBudget(), log),
		OpenPresenter: func() (ports.Presenter, error) {
			p, err := openPresenter(cfg, fs, log)
			if err != nil {
				return nil, err
			}
			events.src = p
			return p, nil
		},
		OpenAudio: func() (ports.AudioOutput, error) {
			return openAudio(cfg, log)
		},
		Log: log,
	}

	player := playback.NewPlayer(cfg.ToPlayerConfig(mediaPath), deps)
	result := host.Run(ctx, player, events, log)
	if code := result.ExitCode(); code != 0 {
		return cli.Exit("", code)
	}
	return nil
}

func engineOptions(cfg config.Config) ffmpegengine.Options {
	return ffmpegengine.Options{
		FFmpegPath:        cfg.Decode.FFmpegPath,
		MaxBufferedFrames: cfg.Decode.MaxBufferedFrames,
		AudioPacketFrames: cfg.Decode.AudioPacketFrames,
	}
}

// presenterWithEvents is a surface that also delivers host events.
type presenterWithEvents interface {
	ports.Presenter
	ports.EventSource
}

func openPresenter(cfg config.Config, fs ports.FileSystem, log ports.Logger) (presenterWithEvents, error) {
	if !cfg.Headless.Enabled {
		return sdlpresenter.Open(sdlpresenter.Options{
			Title:      cfg.Window.Title,
			Width:      cfg.Window.Width,
			Height:     cfg.Window.Height,
			Fullscreen: cfg.Window.Fullscreen,
			VSync:      cfg.Window.VSync,
		}, log)
	}

	var sink ports.SnapshotSink = nullsink.New()
	if cfg.Headless.SnapshotDir != "" {
		sink = filesink.New(cfg.Headless.SnapshotDir, fs)
	}
	return ggpresenter.New(ggpresenter.Options{
		Width:         cfg.Window.Width,
		Height:        cfg.Window.Height,
		RefreshHz:     cfg.Headless.RefreshHz,
		Sink:          sink,
		SnapshotEvery: cfg.Headless.SnapshotEvery,
	}, log), nil
}

func openAudio(cfg config.Config, log ports.Logger) (ports.AudioOutput, error) {
	device := otoaudio.DeviceSpec{
		Rate:     cfg.Audio.DeviceRate,
		Channels: cfg.Audio.DeviceChannels,
	}
	if !cfg.Audio.Enabled {
		return otoaudio.NewSilent(device, log), nil
	}
	return otoaudio.Open(device, log)
}

// lazyEvents forwards to the presenter once it has been opened.
type lazyEvents struct {
	src ports.EventSource
}

func (e *lazyEvents) PollEvent() (ports.Event, bool) {
	if e.src == nil {
		return ports.Event{}, false
	}
	return e.src.PollEvent()
}
