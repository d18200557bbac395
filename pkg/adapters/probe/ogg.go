package probe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Ogg page layout.
// See: https://xiph.org/ogg/doc/framing.html
const (
	oggHeaderLen = 27
	oggFlagBOS   = 0x02
	oggMaxPages  = 32
)

var (
	theoraMagic = []byte("\x80theora")
	vorbisMagic = []byte("\x01vorbis")
	opusMagic   = []byte("OpusHead")
)

// probeOgg reads the beginning-of-stream pages, which carry the identification
// header of every logical stream, and stops at the first data page.
func probeOgg(r io.Reader) (StreamInfo, error) {
	info := StreamInfo{Container: ContainerOgg}

	for i := 0; i < oggMaxPages; i++ {
		bos, packet, err := readOggPage(r)
		if err != nil {
			if errors.Is(err, io.EOF) && i > 0 {
				break
			}
			return info, fmt.Errorf("ogg page: %w", err)
		}
		if !bos {
			break
		}
		parseOggIdent(&info, packet)
	}
	return info, nil
}

// readOggPage reads one page and returns its BOS flag and first packet.
func readOggPage(r io.Reader) (bool, []byte, error) {
	header := make([]byte, oggHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return false, nil, err
	}
	if !bytes.Equal(header[:4], []byte("OggS")) {
		return false, nil, errors.New("bad capture pattern")
	}
	bos := header[5]&oggFlagBOS != 0

	lacing := make([]byte, header[26])
	if _, err := io.ReadFull(r, lacing); err != nil {
		return false, nil, unexpected(err)
	}

	total, first := 0, -1
	for _, l := range lacing {
		total += int(l)
		if first < 0 && l < 255 {
			first = total
		}
	}
	if first < 0 {
		first = total
	}

	body := make([]byte, total)
	if _, err := io.ReadFull(r, body); err != nil {
		return false, nil, unexpected(err)
	}
	return bos, body[:first], nil
}

func parseOggIdent(info *StreamInfo, p []byte) {
	switch {
	case bytes.HasPrefix(p, theoraMagic) && len(p) >= 20 && info.VideoCodec == "":
		info.VideoCodec = "theora"
		info.Width = int(binary.BigEndian.Uint16(p[10:12])) * 16
		info.Height = int(binary.BigEndian.Uint16(p[12:14])) * 16
		if w, h := uint24(p[14:17]), uint24(p[17:20]); w > 0 && h > 0 {
			info.Width, info.Height = w, h
		}
	case bytes.HasPrefix(p, vorbisMagic) && len(p) >= 16 && !info.HasAudio:
		info.HasAudio = true
		info.AudioCodec = "vorbis"
		info.Channels = int(p[11])
		info.SampleRate = int(binary.LittleEndian.Uint32(p[12:16]))
	case bytes.HasPrefix(p, opusMagic) && len(p) >= 10 && !info.HasAudio:
		// Opus always decodes at 48 kHz regardless of the input rate field.
		info.HasAudio = true
		info.AudioCodec = "opus"
		info.Channels = int(p[9])
		info.SampleRate = 48000
	}
}

func uint24(b []byte) int {
	return int(b[0])<<16 | int(b[1])<<8 | int(b[2])
}

// unexpected maps a mid-page EOF to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
