// Package testpattern generates synthetic program frames for the simulation
// harness: a moving bar with the scene name and a frame counter, plus a
// per-source sine tone, so replays saved from the simulator can be told
// apart by eye and ear.
package testpattern

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
)

const toneAmplitude = 0.2

// Generator produces raw video and audio deliveries in the shape hosts hand
// to capture taps. It is not safe for concurrent use; the simulation loop
// drives it from a single goroutine.
type Generator struct {
	width  int
	height int
	format frame.PixelFormat
	fps    float64

	background color.Color
	bar        color.Color
	label      color.Color

	sampleRate int
	phases     map[string]float64
}

// NewGenerator creates a generator for the given geometry and pixel format.
func NewGenerator(width, height int, format frame.PixelFormat, fps float64, background, bar, label color.Color) *Generator {
	if fps <= 0 {
		fps = 60
	}
	return &Generator{
		width:      width,
		height:     height,
		format:     format,
		fps:        fps,
		background: background,
		bar:        bar,
		label:      label,
		sampleRate: ports.DefaultSampleRate,
		phases:     make(map[string]float64),
	}
}

// SamplesPerTick returns the audio chunk size matching one video frame.
func (g *Generator) SamplesPerTick() int {
	return int(math.Round(float64(g.sampleRate) / g.fps))
}

// VideoFrame renders frame number index of the given scene's pattern. The
// returned planes are freshly allocated, so they outlive the call even
// though tap receivers treat them as borrowed.
func (g *Generator) VideoFrame(sceneName string, index int) ports.RawVideo {
	img := g.render(sceneName, index)

	raw := ports.RawVideo{
		Width:       g.width,
		Height:      g.height,
		Format:      g.format,
		TimestampNs: g.timestampNs(index),
	}
	switch g.format {
	case frame.FormatI420:
		raw.Planes, raw.Strides = rgbaToI420(img)
	case frame.FormatNV12:
		raw.Planes, raw.Strides = rgbaToNV12(img)
	case frame.FormatBGRA:
		raw.Planes, raw.Strides = rgbaToPacked(img, 2, 1, 0, false)
	case frame.FormatBGRX:
		raw.Planes, raw.Strides = rgbaToPacked(img, 2, 1, 0, true)
	default:
		raw.Format = frame.FormatRGBA
		raw.Planes = [][]byte{append([]byte(nil), img.Pix...)}
		raw.Strides = []int{img.Stride}
	}
	return raw
}

// AudioFrame produces one tick's worth of a stereo sine tone for the given
// source. Each source gets its own frequency and keeps phase continuity
// across ticks.
func (g *Generator) AudioFrame(source string, index int) ports.RawAudio {
	samples := g.SamplesPerTick()
	freq := toneFrequency(source)
	phase := g.phases[source]
	step := 2 * math.Pi * freq / float64(g.sampleRate)

	left := make([]byte, samples*frame.AudioBytesPerSample)
	right := make([]byte, samples*frame.AudioBytesPerSample)
	for s := 0; s < samples; s++ {
		v := float32(toneAmplitude * math.Sin(phase))
		bits := math.Float32bits(v)
		binary.LittleEndian.PutUint32(left[s*4:], bits)
		binary.LittleEndian.PutUint32(right[s*4:], bits)
		phase += step
	}
	g.phases[source] = math.Mod(phase, 2*math.Pi)

	return ports.RawAudio{
		SampleCount: samples,
		TimestampNs: g.timestampNs(index),
		Channels:    [][]byte{left, right},
	}
}

func (g *Generator) timestampNs(index int) uint64 {
	return uint64(float64(index) * 1e9 / g.fps)
}

// render draws the pattern with gg: background, traveling bar, scene label,
// frame counter.
func (g *Generator) render(sceneName string, index int) *image.RGBA {
	dc := gg.NewContext(g.width, g.height)
	dc.SetColor(g.background)
	dc.Clear()

	barWidth := g.width / 8
	if barWidth < 4 {
		barWidth = 4
	}
	span := g.width + barWidth
	x := (index*4)%span - barWidth
	dc.SetColor(g.bar)
	dc.DrawRectangle(float64(x), 0, float64(barWidth), float64(g.height))
	dc.Fill()

	dc.SetColor(g.label)
	dc.DrawStringAnchored(sceneName, 8, 12, 0, 0.5)
	dc.DrawStringAnchored(fmt.Sprintf("frame %06d", index), 8, 28, 0, 0.5)

	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		bounds := dc.Image().Bounds()
		rgba := image.NewRGBA(bounds)
		xdraw.Draw(rgba, bounds, dc.Image(), bounds.Min, xdraw.Src)
		return rgba
	}
	return img
}

func toneFrequency(source string) float64 {
	h := fnv.New32a()
	h.Write([]byte(source))
	return 220 + float64(h.Sum32()%8)*55
}

// rgbaToPacked reorders RGBA bytes into a packed single-plane layout. With
// opaque set, the fourth byte is forced to 0xFF, matching formats that
// ignore alpha.
func rgbaToPacked(img *image.RGBA, ri, gi, bi int, opaque bool) ([][]byte, []int) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	stride := w * 4
	plane := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		srcRow := img.Pix[y*img.Stride:]
		dstRow := plane[y*stride:]
		for x := 0; x < w; x++ {
			r, gr, b, a := srcRow[x*4], srcRow[x*4+1], srcRow[x*4+2], srcRow[x*4+3]
			dstRow[x*4+ri] = r
			dstRow[x*4+gi] = gr
			dstRow[x*4+bi] = b
			if opaque {
				dstRow[x*4+3] = 0xFF
			} else {
				dstRow[x*4+3] = a
			}
		}
	}
	return [][]byte{plane}, []int{stride}
}

// rgbaToI420 converts to planar 4:2:0. Luma converts per pixel; chroma is
// computed at full resolution and downsampled with a bilinear filter.
func rgbaToI420(img *image.RGBA) ([][]byte, []int) {
	yPlane, cb, cr := splitYCbCr(img)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	cw, ch := (w+1)/2, (h+1)/2

	cbSmall := scaleGray(cb, cw, ch)
	crSmall := scaleGray(cr, cw, ch)

	return [][]byte{yPlane, cbSmall.Pix, crSmall.Pix}, []int{w, cbSmall.Stride, crSmall.Stride}
}

// rgbaToNV12 converts to semi-planar 4:2:0 with interleaved CbCr.
func rgbaToNV12(img *image.RGBA) ([][]byte, []int) {
	yPlane, cb, cr := splitYCbCr(img)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	cw, ch := (w+1)/2, (h+1)/2

	cbSmall := scaleGray(cb, cw, ch)
	crSmall := scaleGray(cr, cw, ch)

	uvStride := cw * 2
	uv := make([]byte, uvStride*ch)
	for y := 0; y < ch; y++ {
		for x := 0; x < cw; x++ {
			uv[y*uvStride+x*2] = cbSmall.Pix[y*cbSmall.Stride+x]
			uv[y*uvStride+x*2+1] = crSmall.Pix[y*crSmall.Stride+x]
		}
	}
	return [][]byte{yPlane, uv}, []int{w, uvStride}
}

// splitYCbCr converts the image to full-resolution Y, Cb, Cr using the
// standard library's BT.601 conversion.
func splitYCbCr(img *image.RGBA) ([]byte, *image.Gray, *image.Gray) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	yPlane := make([]byte, w*h)
	cb := image.NewGray(image.Rect(0, 0, w, h))
	cr := image.NewGray(image.Rect(0, 0, w, h))
	for yy := 0; yy < h; yy++ {
		row := img.Pix[yy*img.Stride:]
		for x := 0; x < w; x++ {
			r, g, b := row[x*4], row[x*4+1], row[x*4+2]
			py, pcb, pcr := color.RGBToYCbCr(r, g, b)
			yPlane[yy*w+x] = py
			cb.Pix[yy*cb.Stride+x] = pcb
			cr.Pix[yy*cr.Stride+x] = pcr
		}
	}
	return yPlane, cb, cr
}

func scaleGray(src *image.Gray, w, h int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
