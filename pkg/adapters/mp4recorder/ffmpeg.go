package mp4recorder

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
)

// ffmpegRecorder encodes via two ffmpeg passes: raw video frames stream to
// an encoding process over stdin while audio samples accumulate in a raw
// f32le temp file, then Stop muxes both into the final MP4. The encoder
// process is spawned lazily on the first video frame because the pixel
// format is only known from the frame itself.
type ffmpegRecorder struct {
	ffmpegPath string
	settings   ports.RecordingSettings
	channels   int

	mu      sync.Mutex
	started bool
	stopped bool

	format frame.PixelFormat
	width  int
	height int

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer

	videoTemp   string
	audioTemp   *os.File
	videoFrames int
	audioBytes  int64
}

func newFFmpegRecorder(ffmpegPath string, settings ports.RecordingSettings) *ffmpegRecorder {
	channels := settings.Channels
	if channels <= 0 {
		channels = 2
	}
	return &ffmpegRecorder{
		ffmpegPath: ffmpegPath,
		settings:   settings,
		channels:   channels,
	}
}

// Start prepares the temp files. The encoder itself starts on the first
// video frame.
func (r *ffmpegRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return nil
	}
	if dir := filepath.Dir(r.settings.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	videoTemp, err := os.CreateTemp("", "replay_video_*.mp4")
	if err != nil {
		return fmt.Errorf("create video temp: %w", err)
	}
	videoTemp.Close()
	r.videoTemp = videoTemp.Name()

	audioTemp, err := os.CreateTemp("", "replay_audio_*.f32le")
	if err != nil {
		os.Remove(r.videoTemp)
		return fmt.Errorf("create audio temp: %w", err)
	}
	r.audioTemp = audioTemp

	r.started = true
	return nil
}

// WriteVideo streams one frame to the encoder, trimming stride padding so
// ffmpeg sees tightly packed rows.
func (r *ffmpegRecorder) WriteVideo(f *frame.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrNotStarted
	}
	if r.stopped {
		return ErrStopped
	}

	if r.cmd == nil {
		if err := r.spawnEncoder(f.Format, f.Width, f.Height); err != nil {
			return err
		}
	}
	if f.Format != r.format || f.Width != r.width || f.Height != r.height {
		return ErrGeometryChanged
	}

	for p := range f.Planes {
		rowBytes := f.Format.PlaneRowBytes(p, f.Width)
		rows := f.Format.PlaneHeight(p, f.Height)
		stride := f.Strides[p]
		for row := 0; row < rows; row++ {
			line := f.Planes[p][row*stride : row*stride+rowBytes]
			if _, err := r.stdin.Write(line); err != nil {
				return fmt.Errorf("write frame to ffmpeg: %w", err)
			}
		}
	}
	r.videoFrames++
	return nil
}

// WriteAudio appends interleaved f32le samples to the audio temp file.
// Missing channels are written as silence so the channel count stays fixed.
func (r *ffmpegRecorder) WriteAudio(f *frame.Audio) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrNotStarted
	}
	if r.stopped {
		return ErrStopped
	}

	buf := interleave(f, r.channels)
	n, err := r.audioTemp.Write(buf)
	if err != nil {
		return fmt.Errorf("write audio temp: %w", err)
	}
	r.audioBytes += int64(n)
	return nil
}

// Stop finalizes the file at settings.Path. With no video frames it falls
// back to the bare container so the path still holds a parseable MP4.
func (r *ffmpegRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return ErrNotStarted
	}
	if r.stopped {
		return ErrStopped
	}
	r.stopped = true

	if r.cmd != nil {
		r.stdin.Close()
		r.stdin = nil
		if err := r.cmd.Wait(); err != nil {
			r.cmd = nil
			r.cleanupTemps()
			return fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, r.stderr.String())
		}
		r.cmd = nil
	}
	defer r.cleanupTemps()

	if r.videoFrames == 0 {
		return writeEmptyContainer(r.settings)
	}

	r.audioTemp.Close()
	if r.audioBytes == 0 {
		data, err := os.ReadFile(r.videoTemp)
		if err != nil {
			return fmt.Errorf("read encoded video: %w", err)
		}
		return os.WriteFile(r.settings.Path, data, 0644)
	}
	return r.mux()
}

// Release kills a still-running encoder and drops the temp files. Calling
// it after a clean Stop is a no-op.
func (r *ffmpegRecorder) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stdin != nil {
		r.stdin.Close()
		r.stdin = nil
	}
	if r.cmd != nil && r.cmd.Process != nil {
		r.cmd.Process.Kill()
		r.cmd.Wait()
		r.cmd = nil
	}
	if !r.stopped {
		r.cleanupTemps()
		r.stopped = true
	}
}

func (r *ffmpegRecorder) spawnEncoder(format frame.PixelFormat, width, height int) error {
	pixFmt, err := pixelFormatArg(format)
	if err != nil {
		return err
	}

	fps := r.settings.FPS
	if fps <= 0 {
		fps = 60
	}
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", pixFmt,
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%.2f", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		"-crf", "23",
		"-movflags", "+faststart",
		r.videoTemp,
	}

	cmd := exec.Command(r.ffmpegPath, args...)
	cmd.Stderr = &r.stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return fmt.Errorf("start ffmpeg: %w", err)
	}

	r.cmd = cmd
	r.stdin = stdin
	r.format = format
	r.width = width
	r.height = height
	return nil
}

// mux runs the second pass: copy the encoded video stream and encode the
// accumulated raw audio as AAC into the final file.
func (r *ffmpegRecorder) mux() error {
	sampleRate := r.settings.SampleRate
	if sampleRate <= 0 {
		sampleRate = ports.DefaultSampleRate
	}
	args := []string{
		"-y",
		"-i", r.videoTemp,
		"-f", "f32le",
		"-ar", fmt.Sprintf("%d", sampleRate),
		"-ac", fmt.Sprintf("%d", r.channels),
		"-i", r.audioTemp.Name(),
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "160k",
		"-shortest",
		r.settings.Path,
	}
	out, err := exec.Command(r.ffmpegPath, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg mux failed: %w\noutput: %s", err, out)
	}
	return nil
}

func (r *ffmpegRecorder) cleanupTemps() {
	if r.videoTemp != "" {
		os.Remove(r.videoTemp)
		r.videoTemp = ""
	}
	if r.audioTemp != nil {
		name := r.audioTemp.Name()
		r.audioTemp.Close()
		os.Remove(name)
		r.audioTemp = nil
	}
}

// interleave converts planar float32 channels into the interleaved f32le
// stream ffmpeg's pcm reader expects. Nil channel slots become silence.
func interleave(f *frame.Audio, channels int) []byte {
	const sample = frame.AudioBytesPerSample
	out := make([]byte, f.SampleCount*channels*sample)
	zero := make([]byte, sample)
	for s := 0; s < f.SampleCount; s++ {
		for ch := 0; ch < channels; ch++ {
			src := zero
			if ch < len(f.Channels) && f.Channels[ch] != nil {
				src = f.Channels[ch][s*sample : (s+1)*sample]
			}
			copy(out[(s*channels+ch)*sample:], src)
		}
	}
	return out
}

// pixelFormatArg maps engine pixel formats to ffmpeg rawvideo names.
func pixelFormatArg(f frame.PixelFormat) (string, error) {
	switch f {
	case frame.FormatI420:
		return "yuv420p", nil
	case frame.FormatNV12:
		return "nv12", nil
	case frame.FormatRGBA:
		return "rgba", nil
	case frame.FormatBGRA:
		return "bgra", nil
	case frame.FormatBGRX:
		return "bgr0", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

var _ ports.FrameRecorder = (*ffmpegRecorder)(nil)
