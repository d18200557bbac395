package probe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// oggPage builds a single-packet page. The CRC is left zero; the header walk
// does not verify it.
func oggPage(bos bool, serial uint32, packet []byte) []byte {
	var lacing []byte
	n := len(packet)
	for ; n >= 255; n -= 255 {
		lacing = append(lacing, 255)
	}
	lacing = append(lacing, byte(n))

	header := make([]byte, oggHeaderLen)
	copy(header, "OggS")
	if bos {
		header[5] = oggFlagBOS
	}
	binary.LittleEndian.PutUint32(header[14:18], serial)
	header[26] = byte(len(lacing))

	page := append(header, lacing...)
	return append(page, packet...)
}

func theoraIdent(mbw, mbh, picw, pich int) []byte {
	p := make([]byte, 42)
	copy(p, theoraMagic)
	p[7], p[8] = 3, 2
	binary.BigEndian.PutUint16(p[10:12], uint16(mbw))
	binary.BigEndian.PutUint16(p[12:14], uint16(mbh))
	p[14], p[15], p[16] = byte(picw>>16), byte(picw>>8), byte(picw)
	p[17], p[18], p[19] = byte(pich>>16), byte(pich>>8), byte(pich)
	return p
}

func vorbisIdent(channels, rate int) []byte {
	p := make([]byte, 30)
	copy(p, vorbisMagic)
	p[11] = byte(channels)
	binary.LittleEndian.PutUint32(p[12:16], uint32(rate))
	return p
}

func opusIdent(channels int) []byte {
	p := make([]byte, 19)
	copy(p, opusMagic)
	p[8] = 1
	p[9] = byte(channels)
	binary.LittleEndian.PutUint32(p[12:16], 44100)
	return p
}

func oggFile(pages ...[]byte) []byte {
	pages = append(pages, oggPage(false, 1, []byte("\x81theora comment")))
	return bytes.Join(pages, nil)
}

func TestProbe_Ogg(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want StreamInfo
	}{
		{
			name: "theora with vorbis",
			data: oggFile(
				oggPage(true, 1, theoraIdent(80, 45, 1280, 720)),
				oggPage(true, 2, vorbisIdent(2, 44100)),
			),
			want: StreamInfo{Container: ContainerOgg, VideoCodec: "theora", Width: 1280, Height: 720,
				HasAudio: true, AudioCodec: "vorbis", Channels: 2, SampleRate: 44100},
		},
		{
			name: "macroblock size without picture size",
			data: oggFile(oggPage(true, 1, theoraIdent(40, 30, 0, 0))),
			want: StreamInfo{Container: ContainerOgg, VideoCodec: "theora", Width: 640, Height: 480},
		},
		{
			name: "opus audio first",
			data: oggFile(
				oggPage(true, 2, opusIdent(1)),
				oggPage(true, 1, theoraIdent(20, 15, 320, 240)),
			),
			want: StreamInfo{Container: ContainerOgg, VideoCodec: "theora", Width: 320, Height: 240,
				HasAudio: true, AudioCodec: "opus", Channels: 1, SampleRate: 48000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bytes.NewReader(tt.data)
			got, err := Probe(r)
			if err != nil {
				t.Fatalf("Probe failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Probe = %+v, want %+v", got, tt.want)
			}
			if pos, _ := r.Seek(0, io.SeekCurrent); pos != 0 {
				t.Errorf("reader left at %d, want 0", pos)
			}
		})
	}
}

func TestProbe_OggAudioOnly(t *testing.T) {
	data := oggFile(oggPage(true, 1, vorbisIdent(2, 48000)))
	if _, err := Probe(bytes.NewReader(data)); !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("error = %v, want ErrNoVideoTrack", err)
	}
}

func TestProbe_OggStopsAtFirstDataPage(t *testing.T) {
	data := oggFile(oggPage(true, 1, theoraIdent(20, 15, 320, 240)))
	data = append(data, oggPage(true, 2, vorbisIdent(2, 48000))...)

	info, err := Probe(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if info.HasAudio {
		t.Error("stream after the first data page should be ignored")
	}
}

func TestProbe_OggTruncated(t *testing.T) {
	page := oggPage(true, 1, theoraIdent(80, 45, 1280, 720))

	tests := []struct {
		name string
		data []byte
	}{
		{"header", page[:10]},
		{"body", page[:len(page)-5]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Probe(bytes.NewReader(tt.data))
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Errorf("error = %v, want io.ErrUnexpectedEOF", err)
			}
		})
	}
}
