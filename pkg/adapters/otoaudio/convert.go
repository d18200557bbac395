package otoaudio

import (
	"encoding/binary"
	"math"

	"github.com/user/ornament/pkg/ports"
)

// converter remaps channels and linearly resamples interleaved float32 audio.
// It keeps the last source frame so consecutive packets join without gaps.
type converter struct {
	srcCh   int
	dstCh   int
	step    float64
	pos     float64
	prev    []float32
	hasPrev bool
}

func newConverter(src ports.AudioSpec, dst DeviceSpec) *converter {
	return &converter{
		srcCh: src.Channels,
		dstCh: dst.Channels,
		step:  float64(src.Freq) / float64(dst.Rate),
		prev:  make([]float32, dst.Channels),
	}
}

func (c *converter) reset() {
	c.pos = 0
	c.hasPrev = false
}

// convert returns device-format bytes for the given source bytes.
func (c *converter) convert(in []byte) []byte {
	frames := c.decode(in)
	if len(frames) == 0 {
		return nil
	}
	if !c.hasPrev {
		copy(c.prev, frames[0])
		frames = frames[1:]
		c.hasPrev = true
		c.pos = 0
	}

	at := func(i int) []float32 {
		if i == 0 {
			return c.prev
		}
		return frames[i-1]
	}

	total := len(frames) + 1
	out := make([]byte, 0, int(float64(len(frames))/c.step+1)*c.dstCh*4)
	for {
		i := int(c.pos)
		if i+1 >= total {
			break
		}
		frac := float32(c.pos - float64(i))
		a, b := at(i), at(i+1)
		for ch := 0; ch < c.dstCh; ch++ {
			v := a[ch] + (b[ch]-a[ch])*frac
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
		c.pos += c.step
	}

	if len(frames) > 0 {
		copy(c.prev, frames[len(frames)-1])
		c.pos -= float64(len(frames))
	}
	return out
}

// decode splits interleaved source bytes into frames already mapped to the
// device channel count.
func (c *converter) decode(in []byte) [][]float32 {
	n := len(in) / (c.srcCh * 4)
	frames := make([][]float32, n)
	src := make([]float32, c.srcCh)
	for f := 0; f < n; f++ {
		for ch := 0; ch < c.srcCh; ch++ {
			off := (f*c.srcCh + ch) * 4
			src[ch] = math.Float32frombits(binary.LittleEndian.Uint32(in[off:]))
		}
		frames[f] = c.mapChannels(src)
	}
	return frames
}

func (c *converter) mapChannels(src []float32) []float32 {
	dst := make([]float32, c.dstCh)
	switch {
	case c.dstCh == 1:
		var sum float32
		for _, v := range src {
			sum += v
		}
		dst[0] = sum / float32(len(src))
	case c.srcCh == 1:
		for ch := range dst {
			dst[ch] = src[0]
		}
	default:
		for ch := range dst {
			dst[ch] = src[min(ch, c.srcCh-1)]
		}
	}
	return dst
}
