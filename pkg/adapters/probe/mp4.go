package probe

import (
	"fmt"
	"io"

	"github.com/Eyevinn/mp4ff/mp4"
)

func probeMP4(r io.ReadSeeker) (StreamInfo, error) {
	info := StreamInfo{Container: ContainerMP4}

	mp4File, err := mp4.DecodeFile(r)
	if err != nil {
		return info, fmt.Errorf("decode mp4: %w", err)
	}

	if !moovBeforeMdat(mp4File) {
		return info, ErrNotStreamable
	}

	moov := mp4File.Moov
	if mp4File.IsFragmented() && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return info, fmt.Errorf("decode mp4: no moov box")
	}

	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			if info.Width == 0 {
				readVideoTrack(trak, &info)
			}
		case "soun":
			if !info.HasAudio {
				readAudioTrack(trak, &info)
			}
		}
	}

	return info, nil
}

// moovBeforeMdat reports whether the movie header precedes the media data.
// A file without a top-level mdat passes; a missing moov is reported later.
func moovBeforeMdat(f *mp4.File) bool {
	for _, box := range f.Children {
		switch box.Type() {
		case "moov":
			return true
		case "mdat":
			return false
		}
	}
	return true
}

func sampleEntries(trak *mp4.TrakBox) []mp4.Box {
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return nil
	}
	return trak.Mdia.Minf.Stbl.Stsd.Children
}

func readVideoTrack(trak *mp4.TrakBox, info *StreamInfo) {
	for _, child := range sampleEntries(trak) {
		vse, ok := child.(*mp4.VisualSampleEntryBox)
		if !ok {
			continue
		}
		info.VideoCodec = vse.Type()
		info.Width = int(vse.Width)
		info.Height = int(vse.Height)
		break
	}

	if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
		info.DurationMs = mdhd.Duration * 1000 / uint64(mdhd.Timescale)
	}
}

func readAudioTrack(trak *mp4.TrakBox, info *StreamInfo) {
	for _, child := range sampleEntries(trak) {
		ase, ok := child.(*mp4.AudioSampleEntryBox)
		if !ok {
			continue
		}
		info.HasAudio = true
		info.AudioCodec = ase.Type()
		info.Channels = int(ase.ChannelCount)
		info.SampleRate = int(ase.SampleRate)
		break
	}

	// The sample entry rate field is 16 bits wide; the media timescale carries the
	// real rate for high-rate tracks.
	if mdhd := trak.Mdia.Mdhd; info.HasAudio && mdhd != nil && mdhd.Timescale > 0 {
		if info.SampleRate == 0 || int(mdhd.Timescale) > info.SampleRate {
			info.SampleRate = int(mdhd.Timescale)
		}
	}
}
