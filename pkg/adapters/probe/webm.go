package probe

import (
	"fmt"
	"io"
	"strings"

	"github.com/ebml-go/ebml"
)

// EBML element IDs used by the WebM header walk.
// See: https://matroska.org/technical/elements.html
const (
	idEBMLHeader = 0x1A45DFA3
	idSegment    = 0x18538067
	idInfo       = 0x1549A966
	idTracks     = 0x1654AE6B
	idCluster    = 0x1F43B675
)

const (
	trackTypeVideo = 1
	trackTypeAudio = 2
)

type webmInfo struct {
	TimecodeScale uint64  `ebml:"2AD7B1"`
	Duration      float64 `ebml:"4489"`
}

type webmTrackEntry struct {
	TrackNumber uint64    `ebml:"D7"`
	TrackType   uint64    `ebml:"83"`
	CodecID     string    `ebml:"86"`
	Video       webmVideo `ebml:"E0"`
	Audio       webmAudio `ebml:"E1"`
}

type webmVideo struct {
	PixelWidth  uint64 `ebml:"B0"`
	PixelHeight uint64 `ebml:"BA"`
}

type webmAudio struct {
	SamplingFrequency float64 `ebml:"B5"`
	Channels          uint64  `ebml:"9F"`
}

func probeWebM(r io.ReadSeeker) (StreamInfo, error) {
	info := StreamInfo{Container: ContainerWebM}

	root, err := ebml.RootElement(r)
	if err != nil {
		return info, fmt.Errorf("decode webm: %w", err)
	}

	header, err := root.Next()
	if err != nil {
		return info, fmt.Errorf("decode webm: %w", err)
	}
	if header.Id != idEBMLHeader {
		return info, fmt.Errorf("decode webm: no ebml header: %#x", header.Id)
	}
	if _, err := root.Seek(header.Size(), io.SeekCurrent); err != nil {
		return info, fmt.Errorf("decode webm: %w", err)
	}

	segment, err := root.Next()
	if err != nil {
		return info, fmt.Errorf("decode webm: %w", err)
	}
	if segment.Id != idSegment {
		return info, fmt.Errorf("decode webm: expected segment, got %#x", segment.Id)
	}

	for el, err := segment.Next(); err == nil; el, err = segment.Next() {
		switch el.Id {
		case idInfo:
			var si webmInfo
			if err := el.Unmarshal(&si); err == nil {
				scale := si.TimecodeScale
				if scale == 0 {
					scale = 1000000
				}
				info.DurationMs = uint64(si.Duration * float64(scale) / 1e6)
			}
		case idTracks:
			for entry, err := el.Next(); err == nil; entry, err = el.Next() {
				var te webmTrackEntry
				if err := entry.Unmarshal(&te); err != nil {
					return info, fmt.Errorf("decode webm track entry: %w", err)
				}
				applyTrack(te, &info)
			}
			return info, nil
		case idCluster:
			// Media data begins; the header carried no track list.
			return info, ErrNoVideoTrack
		}
		if _, err := segment.Seek(el.Size(), io.SeekCurrent); err != nil {
			return info, fmt.Errorf("decode webm: %w", err)
		}
	}

	return info, ErrNoVideoTrack
}

func applyTrack(te webmTrackEntry, info *StreamInfo) {
	switch te.TrackType {
	case trackTypeVideo:
		if info.Width == 0 {
			info.VideoCodec = codecName(te.CodecID, "V_")
			info.Width = int(te.Video.PixelWidth)
			info.Height = int(te.Video.PixelHeight)
		}
	case trackTypeAudio:
		if !info.HasAudio {
			info.HasAudio = true
			info.AudioCodec = codecName(te.CodecID, "A_")
			info.Channels = int(te.Audio.Channels)
			info.SampleRate = int(te.Audio.SamplingFrequency)
			if info.Channels == 0 {
				info.Channels = 1
			}
			if info.SampleRate == 0 {
				info.SampleRate = 8000
			}
		}
	}
}

func codecName(id, prefix string) string {
	return strings.ToLower(strings.TrimPrefix(id, prefix))
}
