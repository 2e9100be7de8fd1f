// Package frame defines the owned media frames cached by the replay engine:
// deep copies of host-delivered video and audio with explicit plane buffer
// ownership so that eviction and teardown can be verified leak-free.
package frame

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// ErrInvalid is returned when a delivered frame fails admission validation
// (zero dimensions, unknown format, missing planes).
var ErrInvalid = errors.New("frame: invalid frame")

// PixelFormat identifies the pixel layout of a video frame. The engine
// stores frames in whatever format the host delivers; the format drives
// per-plane size calculation at copy time.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	// FormatI420 is planar YUV 4:2:0: full-size Y, half-size U and V.
	FormatI420
	// FormatNV12 is semi-planar YUV 4:2:0: full-size Y, interleaved UV at
	// half height.
	FormatNV12
	// FormatRGBA is packed 8-bit RGBA.
	FormatRGBA
	// FormatBGRA is packed 8-bit BGRA.
	FormatBGRA
	// FormatBGRX is packed 8-bit BGR with an ignored fourth byte.
	FormatBGRX
)

// String returns the conventional name of the format.
func (f PixelFormat) String() string {
	switch f {
	case FormatI420:
		return "I420"
	case FormatNV12:
		return "NV12"
	case FormatRGBA:
		return "RGBA"
	case FormatBGRA:
		return "BGRA"
	case FormatBGRX:
		return "BGRX"
	default:
		return "unknown"
	}
}

// ParseFormat maps a format name, as written in configuration, to its
// PixelFormat.
func ParseFormat(name string) (PixelFormat, error) {
	switch strings.ToUpper(name) {
	case "I420":
		return FormatI420, nil
	case "NV12":
		return FormatNV12, nil
	case "RGBA":
		return FormatRGBA, nil
	case "BGRA":
		return FormatBGRA, nil
	case "BGRX":
		return FormatBGRX, nil
	default:
		return FormatUnknown, fmt.Errorf("frame: unknown pixel format %q", name)
	}
}

// PlaneSpec describes how one plane of a format subsamples the frame.
// A plane's row width is ceil(width/WidthDiv)*BytesPerSample bytes and its
// height is ceil(height/HeightDiv) rows. Copying with the wrong subsampling
// corrupts the cache, so this table is the single source of truth.
type PlaneSpec struct {
	WidthDiv       int
	HeightDiv      int
	BytesPerSample int
}

var planeTables = map[PixelFormat][]PlaneSpec{
	FormatI420: {{1, 1, 1}, {2, 2, 1}, {2, 2, 1}},
	FormatNV12: {{1, 1, 1}, {2, 2, 2}},
	FormatRGBA: {{1, 1, 4}},
	FormatBGRA: {{1, 1, 4}},
	FormatBGRX: {{1, 1, 4}},
}

// Planes returns the plane table for the format, or nil for unknown formats.
func (f PixelFormat) Planes() []PlaneSpec {
	return planeTables[f]
}

// PlaneCount returns the number of planes the format carries.
func (f PixelFormat) PlaneCount() int {
	return len(planeTables[f])
}

// PlaneHeight returns the row count of plane p for the given frame height.
func (f PixelFormat) PlaneHeight(p, height int) int {
	specs := planeTables[f]
	if p < 0 || p >= len(specs) {
		return 0
	}
	return ceilDiv(height, specs[p].HeightDiv)
}

// PlaneRowBytes returns the packed row width in bytes of plane p for the
// given frame width, ignoring any stride padding.
func (f PixelFormat) PlaneRowBytes(p, width int) int {
	specs := planeTables[f]
	if p < 0 || p >= len(specs) {
		return 0
	}
	return ceilDiv(width, specs[p].WidthDiv) * specs[p].BytesPerSample
}

func ceilDiv(n, div int) int {
	if div <= 0 {
		return 0
	}
	return (n + div - 1) / div
}

// AudioBytesPerSample is the size of one planar float32 audio sample.
const AudioBytesPerSample = 4

// Video is an owned copy of one video frame. Dimensions, format and plane
// buffers are immutable after construction. Plane buffers are exclusively
// owned and returned to the allocator when the last reference is released.
type Video struct {
	Width       int
	Height      int
	Format      PixelFormat
	TimestampNs uint64
	Strides     []int
	Planes      [][]byte

	refs atomic.Int32
}

// Audio is an owned copy of one audio delivery: planar float32 samples, one
// buffer per channel. Channel positions are preserved; absent channels stay
// nil.
type Audio struct {
	SampleCount int
	TimestampNs uint64
	Channels    [][]byte

	refs atomic.Int32
}

// CopyVideo deep-copies borrowed plane memory into an owned Video. Each
// plane copies strides[p] bytes per row for the plane's subsampled height.
// The returned frame holds one reference.
func CopyVideo(alloc Allocator, width, height int, format PixelFormat, timestampNs uint64, planes [][]byte, strides []int) (*Video, error) {
	specs := format.Planes()
	if width <= 0 || height <= 0 || specs == nil {
		return nil, ErrInvalid
	}
	if len(planes) < len(specs) || len(strides) < len(specs) {
		return nil, fmt.Errorf("%w: %s frame needs %d planes, got %d", ErrInvalid, format, len(specs), len(planes))
	}

	v := &Video{
		Width:       width,
		Height:      height,
		Format:      format,
		TimestampNs: timestampNs,
		Strides:     make([]int, len(specs)),
		Planes:      make([][]byte, len(specs)),
	}
	v.refs.Store(1)

	for p := range specs {
		stride := strides[p]
		rows := format.PlaneHeight(p, height)
		if planes[p] == nil || stride < format.PlaneRowBytes(p, width) {
			releasePlanes(alloc, v.Planes)
			return nil, fmt.Errorf("%w: plane %d missing or stride too small", ErrInvalid, p)
		}
		size := stride * rows
		if len(planes[p]) < size {
			releasePlanes(alloc, v.Planes)
			return nil, fmt.Errorf("%w: plane %d is %d bytes, need %d", ErrInvalid, p, len(planes[p]), size)
		}
		buf := alloc.Get(size)
		copy(buf, planes[p][:size])
		v.Planes[p] = buf
		v.Strides[p] = stride
	}

	return v, nil
}

// CopyAudio deep-copies borrowed channel memory into an owned Audio. Each
// non-nil channel copies sampleCount float32 samples; nil channels keep
// their position. The returned frame holds one reference.
func CopyAudio(alloc Allocator, sampleCount int, timestampNs uint64, channels [][]byte) (*Audio, error) {
	if sampleCount <= 0 || len(channels) == 0 {
		return nil, ErrInvalid
	}

	a := &Audio{
		SampleCount: sampleCount,
		TimestampNs: timestampNs,
		Channels:    make([][]byte, len(channels)),
	}
	a.refs.Store(1)

	size := sampleCount * AudioBytesPerSample
	copied := 0
	for ch, src := range channels {
		if src == nil {
			continue
		}
		if len(src) < size {
			releasePlanes(alloc, a.Channels)
			return nil, fmt.Errorf("%w: channel %d is %d bytes, need %d", ErrInvalid, ch, len(src), size)
		}
		buf := alloc.Get(size)
		copy(buf, src[:size])
		a.Channels[ch] = buf
		copied++
	}
	if copied == 0 {
		return nil, ErrInvalid
	}

	return a, nil
}

// Valid reports whether the frame satisfies the cache's retention
// invariants: positive dimensions, a known format, and a live buffer for
// every plane the format declares.
func (v *Video) Valid() bool {
	if v == nil || v.Width <= 0 || v.Height <= 0 {
		return false
	}
	specs := v.Format.Planes()
	if specs == nil || len(v.Planes) != len(specs) {
		return false
	}
	for _, p := range v.Planes {
		if p == nil {
			return false
		}
	}
	return true
}

// Retain adds a reference and returns the frame. Only a holder of an
// existing reference may call Retain.
func (v *Video) Retain() *Video {
	v.refs.Add(1)
	return v
}

// Release drops one reference; the last release returns every plane buffer
// to the allocator exactly once.
func (v *Video) Release(alloc Allocator) {
	if v == nil {
		return
	}
	if v.refs.Add(-1) == 0 {
		releasePlanes(alloc, v.Planes)
		v.Planes = nil
	}
}

// Valid reports whether the frame satisfies the cache's retention
// invariants: a positive sample count and at least one live channel.
func (a *Audio) Valid() bool {
	if a == nil || a.SampleCount <= 0 {
		return false
	}
	for _, ch := range a.Channels {
		if ch != nil {
			return true
		}
	}
	return false
}

// Retain adds a reference and returns the frame. Only a holder of an
// existing reference may call Retain.
func (a *Audio) Retain() *Audio {
	a.refs.Add(1)
	return a
}

// Release drops one reference; the last release returns every channel
// buffer to the allocator exactly once.
func (a *Audio) Release(alloc Allocator) {
	if a == nil {
		return
	}
	if a.refs.Add(-1) == 0 {
		releasePlanes(alloc, a.Channels)
		a.Channels = nil
	}
}

func releasePlanes(alloc Allocator, planes [][]byte) {
	for _, p := range planes {
		if p != nil {
			alloc.Put(p)
		}
	}
}
