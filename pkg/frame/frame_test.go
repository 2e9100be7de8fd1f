package frame

import (
	"errors"
	"testing"
)

// countingAllocator tracks outstanding buffers so tests can prove releases
// balance copies.
type countingAllocator struct {
	gets int
	puts int
}

func (c *countingAllocator) Get(size int) []byte {
	c.gets++
	return make([]byte, size)
}

func (c *countingAllocator) Put(buf []byte) {
	c.puts++
}

func (c *countingAllocator) outstanding() int {
	return c.gets - c.puts
}

// makeI420 builds source planes with the given stride padding and a
// deterministic byte pattern.
func makeI420(width, height, pad int) (planes [][]byte, strides []int) {
	planes = make([][]byte, 3)
	strides = make([]int, 3)
	for p, spec := range FormatI420.Planes() {
		stride := (width+spec.WidthDiv-1)/spec.WidthDiv*spec.BytesPerSample + pad
		rows := (height + spec.HeightDiv - 1) / spec.HeightDiv
		buf := make([]byte, stride*rows)
		for i := range buf {
			buf[i] = byte((i + p*31) % 251)
		}
		planes[p] = buf
		strides[p] = stride
	}
	return planes, strides
}

func TestCopyVideoI420(t *testing.T) {
	alloc := &countingAllocator{}
	planes, strides := makeI420(320, 240, 16)

	v, err := CopyVideo(alloc, 320, 240, FormatI420, 1000, planes, strides)
	if err != nil {
		t.Fatalf("CopyVideo failed: %v", err)
	}

	if !v.Valid() {
		t.Error("copied frame should be valid")
	}
	if v.Width != 320 || v.Height != 240 || v.Format != FormatI420 {
		t.Errorf("Unexpected geometry: %dx%d %s", v.Width, v.Height, v.Format)
	}
	if v.TimestampNs != 1000 {
		t.Errorf("Expected timestamp 1000, got %d", v.TimestampNs)
	}
	if len(v.Planes) != 3 {
		t.Fatalf("Expected 3 planes, got %d", len(v.Planes))
	}

	// Y plane: full stride times full height. Chroma: half height.
	if len(v.Planes[0]) != strides[0]*240 {
		t.Errorf("Y plane size %d, expected %d", len(v.Planes[0]), strides[0]*240)
	}
	if len(v.Planes[1]) != strides[1]*120 {
		t.Errorf("U plane size %d, expected %d", len(v.Planes[1]), strides[1]*120)
	}

	// Deep copy: mutating the source must not change the frame.
	before := v.Planes[0][0]
	planes[0][0] ^= 0xFF
	if v.Planes[0][0] != before {
		t.Error("frame shares memory with the source plane")
	}

	v.Release(alloc)
	if alloc.outstanding() != 0 {
		t.Errorf("Expected all buffers returned, %d outstanding", alloc.outstanding())
	}
}

func TestCopyVideoOddDimensions(t *testing.T) {
	alloc := &countingAllocator{}
	planes, strides := makeI420(321, 239, 0)

	v, err := CopyVideo(alloc, 321, 239, FormatI420, 0, planes, strides)
	if err != nil {
		t.Fatalf("CopyVideo failed: %v", err)
	}
	defer v.Release(alloc)

	// Chroma planes round up: ceil(321/2)=161 wide, ceil(239/2)=120 rows.
	if got := FormatI420.PlaneRowBytes(1, 321); got != 161 {
		t.Errorf("Expected chroma row of 161 bytes, got %d", got)
	}
	if len(v.Planes[1]) != strides[1]*120 {
		t.Errorf("U plane size %d, expected %d", len(v.Planes[1]), strides[1]*120)
	}
}

func TestCopyVideoRejectsInvalid(t *testing.T) {
	alloc := &countingAllocator{}
	planes, strides := makeI420(64, 64, 0)

	cases := []struct {
		name    string
		width   int
		height  int
		format  PixelFormat
		planes  [][]byte
		strides []int
	}{
		{"zero width", 0, 64, FormatI420, planes, strides},
		{"zero height", 64, 0, FormatI420, planes, strides},
		{"unknown format", 64, 64, FormatUnknown, planes, strides},
		{"missing planes", 64, 64, FormatI420, planes[:1], strides[:1]},
		{"nil plane", 64, 64, FormatI420, [][]byte{nil, planes[1], planes[2]}, strides},
		{"short plane", 64, 64, FormatI420, [][]byte{planes[0][:10], planes[1], planes[2]}, strides},
		{"stride too small", 64, 64, FormatI420, planes, []int{8, 8, 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CopyVideo(alloc, tc.width, tc.height, tc.format, 0, tc.planes, tc.strides)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got: %v", err)
			}
		})
	}

	if alloc.outstanding() != 0 {
		t.Errorf("Rejected copies leaked %d buffers", alloc.outstanding())
	}
}

func TestCopyAudioKeepsChannelPositions(t *testing.T) {
	alloc := &countingAllocator{}
	samples := 480
	data := make([]byte, samples*AudioBytesPerSample)
	for i := range data {
		data[i] = byte(i % 253)
	}

	a, err := CopyAudio(alloc, samples, 5000, [][]byte{nil, data, nil, data})
	if err != nil {
		t.Fatalf("CopyAudio failed: %v", err)
	}

	if !a.Valid() {
		t.Error("copied audio should be valid")
	}
	if len(a.Channels) != 4 {
		t.Fatalf("Expected 4 channel slots, got %d", len(a.Channels))
	}
	if a.Channels[0] != nil || a.Channels[2] != nil {
		t.Error("absent channels must stay nil")
	}
	if len(a.Channels[1]) != samples*AudioBytesPerSample {
		t.Errorf("Channel 1 size %d, expected %d", len(a.Channels[1]), samples*AudioBytesPerSample)
	}

	before := a.Channels[1][0]
	data[0] ^= 0xFF
	if a.Channels[1][0] != before {
		t.Error("audio shares memory with the source channel")
	}

	a.Release(alloc)
	if alloc.outstanding() != 0 {
		t.Errorf("Expected all buffers returned, %d outstanding", alloc.outstanding())
	}
}

func TestCopyAudioRejectsInvalid(t *testing.T) {
	alloc := &countingAllocator{}
	good := make([]byte, 480*AudioBytesPerSample)

	if _, err := CopyAudio(alloc, 0, 0, [][]byte{good}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for zero samples, got: %v", err)
	}
	if _, err := CopyAudio(alloc, 480, 0, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for no channels, got: %v", err)
	}
	if _, err := CopyAudio(alloc, 480, 0, [][]byte{nil, nil}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for all-nil channels, got: %v", err)
	}
	if _, err := CopyAudio(alloc, 480, 0, [][]byte{good[:10]}); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for short channel, got: %v", err)
	}

	if alloc.outstanding() != 0 {
		t.Errorf("Rejected copies leaked %d buffers", alloc.outstanding())
	}
}

func TestVideoRetainRelease(t *testing.T) {
	alloc := &countingAllocator{}
	planes, strides := makeI420(64, 64, 0)

	v, err := CopyVideo(alloc, 64, 64, FormatI420, 0, planes, strides)
	if err != nil {
		t.Fatalf("CopyVideo failed: %v", err)
	}

	v.Retain()
	v.Release(alloc)
	if alloc.outstanding() == 0 {
		t.Fatal("buffers returned while a reference was still held")
	}
	if !v.Valid() {
		t.Error("frame should stay valid while referenced")
	}

	v.Release(alloc)
	if alloc.outstanding() != 0 {
		t.Errorf("Expected all buffers returned, %d outstanding", alloc.outstanding())
	}
}

func TestAudioRetainRelease(t *testing.T) {
	alloc := &countingAllocator{}
	data := make([]byte, 480*AudioBytesPerSample)

	a, err := CopyAudio(alloc, 480, 0, [][]byte{data, data})
	if err != nil {
		t.Fatalf("CopyAudio failed: %v", err)
	}

	a.Retain()
	a.Release(alloc)
	if alloc.outstanding() == 0 {
		t.Fatal("buffers returned while a reference was still held")
	}

	a.Release(alloc)
	if alloc.outstanding() != 0 {
		t.Errorf("Expected all buffers returned, %d outstanding", alloc.outstanding())
	}
}

func TestPackedFormats(t *testing.T) {
	alloc := &countingAllocator{}

	for _, format := range []PixelFormat{FormatRGBA, FormatBGRA, FormatBGRX} {
		if format.PlaneCount() != 1 {
			t.Errorf("%s: expected 1 plane, got %d", format, format.PlaneCount())
		}
		stride := 64 * 4
		buf := make([]byte, stride*48)
		v, err := CopyVideo(alloc, 64, 48, format, 0, [][]byte{buf}, []int{stride})
		if err != nil {
			t.Fatalf("%s: CopyVideo failed: %v", format, err)
		}
		if len(v.Planes[0]) != stride*48 {
			t.Errorf("%s: plane size %d, expected %d", format, len(v.Planes[0]), stride*48)
		}
		v.Release(alloc)
	}

	if alloc.outstanding() != 0 {
		t.Errorf("Expected all buffers returned, %d outstanding", alloc.outstanding())
	}
}

func TestNV12Geometry(t *testing.T) {
	// NV12: full-size Y plus interleaved UV at half height, two bytes per
	// chroma sample pair.
	if FormatNV12.PlaneCount() != 2 {
		t.Fatalf("Expected 2 planes, got %d", FormatNV12.PlaneCount())
	}
	if got := FormatNV12.PlaneRowBytes(1, 320); got != 320 {
		t.Errorf("Expected UV row of 320 bytes, got %d", got)
	}
	if got := FormatNV12.PlaneHeight(1, 240); got != 120 {
		t.Errorf("Expected UV height 120, got %d", got)
	}
}
