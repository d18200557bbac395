package ffmpegengine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/user/ornament/pkg/adapters/probe"
	"github.com/user/ornament/pkg/ports"
)

// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
var ErrFFmpegNotFound = errors.New("ffmpegengine: ffmpeg not found in PATH")

// findFFmpeg resolves the ffmpeg binary, preferring an explicit path.
func findFFmpeg(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, custom)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, p := range []string{
		"/usr/bin/ffmpeg",
		"/usr/local/bin/ffmpeg",
		"/opt/homebrew/bin/ffmpeg",
		"/snap/bin/ffmpeg",
	} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// Available reports whether an ffmpeg binary can be found.
func Available(custom string) bool {
	_, err := findFFmpeg(custom)
	return err == nil
}

func ffmpegPixelFormat(f ports.PixelFormat) string {
	if f == ports.PixelFormatRGBA {
		return "rgba"
	}
	// YV12 is produced as yuv420p and has its chroma planes swapped on read.
	return "yuv420p"
}

func formatSeconds(ms uint64) string {
	return strconv.FormatFloat(float64(ms)/1000, 'f', 3, 64)
}

// buildArgs assembles an ffmpeg command line that reads the container from stdin,
// writes raw video frames to stdout and, when the stream has audio, interleaved
// float32 samples to file descriptor 3.
func buildArgs(info probe.StreamInfo, opts ports.DecodeOptions, startMs uint64) []string {
	threads := opts.Threads
	if threads < 0 {
		threads = 0
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-threads", strconv.Itoa(threads),
		"-i", "pipe:0",
	}

	seek := func() {
		if startMs > 0 {
			args = append(args, "-ss", formatSeconds(startMs))
		}
	}

	seek()
	args = append(args,
		"-map", "0:v:0",
		"-f", "rawvideo",
		"-pix_fmt", ffmpegPixelFormat(opts.PixelFormat),
		"-s", fmt.Sprintf("%dx%d", info.Width, info.Height),
		"-r", strconv.FormatFloat(opts.FrameRate, 'f', -1, 64),
		"pipe:1",
	)

	if info.HasAudio {
		seek()
		args = append(args,
			"-map", "0:a:0",
			"-f", "f32le",
			"-ac", strconv.Itoa(info.Channels),
			"-ar", strconv.Itoa(info.SampleRate),
			"pipe:3",
		)
	}

	return args
}

// process is a running decode subprocess.
type process interface {
	Stdin() io.WriteCloser
	Video() io.Reader
	// Audio returns nil when the process was started without audio output.
	Audio() io.Reader
	Wait() error
}

// launcher starts a decode process. The process must terminate when ctx is done.
type launcher func(ctx context.Context, args []string, withAudio bool) (process, error)

func execLauncher(path string) launcher {
	return func(ctx context.Context, args []string, withAudio bool) (process, error) {
		cmd := exec.CommandContext(ctx, path, args...)
		p := &execProcess{cmd: cmd}
		cmd.Stderr = &p.stderr

		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %w", err)
		}
		p.stdin, p.stdout = stdin, stdout

		var audioWriter *os.File
		if withAudio {
			p.audio, audioWriter, err = os.Pipe()
			if err != nil {
				return nil, fmt.Errorf("audio pipe: %w", err)
			}
			cmd.ExtraFiles = []*os.File{audioWriter}
		}

		if err := cmd.Start(); err != nil {
			if withAudio {
				p.audio.Close()
				audioWriter.Close()
			}
			return nil, fmt.Errorf("start ffmpeg: %w", err)
		}
		if audioWriter != nil {
			audioWriter.Close()
		}
		return p, nil
	}
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.Reader
	audio  *os.File
	stderr lockedBuffer
}

func (p *execProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *execProcess) Video() io.Reader      { return p.stdout }

func (p *execProcess) Audio() io.Reader {
	if p.audio == nil {
		return nil
	}
	return p.audio
}

func (p *execProcess) Wait() error {
	err := p.cmd.Wait()
	if p.audio != nil {
		p.audio.Close()
	}
	if err != nil {
		if msg := strings.TrimSpace(p.stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
	}
	return err
}

// lockedBuffer collects stderr output; exec writes to it from its own goroutine.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

const maxStderr = 4096

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := maxStderr - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
