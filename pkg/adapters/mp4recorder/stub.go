package mp4recorder

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
)

// stubRecorder counts frames and writes a bare MP4 container on Stop. It
// exists so hosts without an encoder still honor the contract that a save
// leaves a parseable file at the requested path.
type stubRecorder struct {
	settings ports.RecordingSettings

	mu          sync.Mutex
	started     bool
	stopped     bool
	videoFrames int
	audioFrames int
}

func newStubRecorder(settings ports.RecordingSettings) *stubRecorder {
	return &stubRecorder{settings: settings}
}

func (r *stubRecorder) Start() error {
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
	r.started = true
	return nil
}

func (r *stubRecorder) WriteVideo(f *frame.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return ErrNotStarted
	}
	if r.stopped {
		return ErrStopped
	}
	r.videoFrames++
	return nil
}

func (r *stubRecorder) WriteAudio(f *frame.Audio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return ErrNotStarted
	}
	if r.stopped {
		return ErrStopped
	}
	r.audioFrames++
	return nil
}

func (r *stubRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return ErrNotStarted
	}
	if r.stopped {
		return ErrStopped
	}
	r.stopped = true
	return writeEmptyContainer(r.settings)
}

func (r *stubRecorder) Release() {}

// writeEmptyContainer writes an MP4 with a video and an audio track and no
// samples. Both recorder backends use it when a recording ends with nothing
// to encode.
func writeEmptyContainer(settings ports.RecordingSettings) error {
	fps := settings.FPS
	if fps <= 0 {
		fps = 60
	}
	sampleRate := settings.SampleRate
	if sampleRate <= 0 {
		sampleRate = ports.DefaultSampleRate
	}

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(uint32(fps*1000), "video", "und")
	init.AddEmptyTrack(uint32(sampleRate), "audio", "und")

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	return os.WriteFile(settings.Path, buf.Bytes(), 0644)
}

var _ ports.FrameRecorder = (*stubRecorder)(nil)
