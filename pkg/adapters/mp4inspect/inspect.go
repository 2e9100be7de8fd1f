// Package mp4inspect reports what a saved replay file contains: tracks,
// codecs, timescales, sample counts. The inspect command uses it to verify
// saves without playing them back.
package mp4inspect

import (
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Track describes one track of a replay file.
type Track struct {
	ID          uint32
	Kind        string // "video", "audio", or the raw handler type
	Codec       string // "h264", "aac", ...; empty for a bare container track
	Timescale   uint32
	DurationMs  uint64
	SampleCount uint32
}

// Report is the inspection result for one file.
type Report struct {
	Path       string
	MajorBrand string
	Fragmented bool
	Tracks     []Track
}

// VideoTrack returns the first video track, if any.
func (r Report) VideoTrack() (Track, bool) {
	return r.track("video")
}

// AudioTrack returns the first audio track, if any.
func (r Report) AudioTrack() (Track, bool) {
	return r.track("audio")
}

func (r Report) track(kind string) (Track, bool) {
	for _, t := range r.Tracks {
		if t.Kind == kind {
			return t, true
		}
	}
	return Track{}, false
}

// InspectFile inspects the MP4 file at path.
func InspectFile(path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	report, err := InspectReader(f)
	if err != nil {
		return Report{}, err
	}
	report.Path = path
	return report, nil
}

// InspectReader inspects MP4 data from a reader.
func InspectReader(reader io.ReadSeeker) (Report, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Report{}, fmt.Errorf("decode mp4: %w", err)
	}

	report := Report{Fragmented: mp4File.IsFragmented()}
	if mp4File.Ftyp != nil {
		report.MajorBrand = mp4File.Ftyp.MajorBrand()
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return Report{}, fmt.Errorf("no moov box found")
	}

	for _, trak := range moov.Traks {
		report.Tracks = append(report.Tracks, inspectTrack(trak))
	}
	return report, nil
}

func inspectTrack(trak *mp4.TrakBox) Track {
	t := Track{}
	if trak.Tkhd != nil {
		t.ID = trak.Tkhd.TrackID
	}
	if trak.Mdia == nil {
		return t
	}
	if trak.Mdia.Hdlr != nil {
		switch trak.Mdia.Hdlr.HandlerType {
		case "vide":
			t.Kind = "video"
		case "soun":
			t.Kind = "audio"
		default:
			t.Kind = trak.Mdia.Hdlr.HandlerType
		}
	}
	if trak.Mdia.Mdhd != nil {
		t.Timescale = trak.Mdia.Mdhd.Timescale
		if t.Timescale > 0 {
			t.DurationMs = trak.Mdia.Mdhd.Duration * 1000 / uint64(t.Timescale)
		}
	}
	if stbl := sampleTable(trak); stbl != nil {
		if stbl.Stsz != nil {
			t.SampleCount = stbl.Stsz.SampleNumber
		}
		if stbl.Stsd != nil {
			t.Codec = codecName(stbl.Stsd)
		}
	}
	return t
}

func sampleTable(trak *mp4.TrakBox) *mp4.StblBox {
	if trak.Mdia.Minf == nil {
		return nil
	}
	return trak.Mdia.Minf.Stbl
}

// codecName maps the sample description to a common codec name.
func codecName(stsd *mp4.StsdBox) string {
	for _, child := range stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			return "h264"
		case "hvc1", "hev1":
			return "hevc"
		case "av01":
			return "av1"
		case "mp4a":
			return "aac"
		}
	}
	return ""
}
