package simhost

import (
	"fmt"

	"github.com/user/replaycap/pkg/ports"
)

// NewRecording creates a recording whose frames come from the host's sink
// feed: between Start and Stop, every frame emitted through any sink is
// written to the underlying frame recorder. This mirrors hosts whose file
// output records the program feed while the engine re-emits cached frames
// through the replay sink.
func (h *Host) NewRecording(settings ports.RecordingSettings) (ports.Recording, error) {
	if h.recorders == nil {
		return nil, fmt.Errorf("simhost: no frame recorder factory configured")
	}
	fr, err := h.recorders.NewFrameRecorder(settings)
	if err != nil {
		return nil, err
	}
	return &recording{host: h, fr: fr}, nil
}

type recording struct {
	host *Host
	fr   ports.FrameRecorder

	// guarded by host.mu
	active   bool
	released bool
}

// Start begins observing the sink feed.
func (r *recording) Start() error {
	if err := r.fr.Start(); err != nil {
		return err
	}
	r.host.mu.Lock()
	defer r.host.mu.Unlock()
	r.active = true
	r.host.recordings[r] = struct{}{}
	return nil
}

// Stop detaches from the feed and finalizes the file.
func (r *recording) Stop() error {
	r.host.mu.Lock()
	if !r.active {
		r.host.mu.Unlock()
		return fmt.Errorf("simhost: recording not started")
	}
	r.active = false
	delete(r.host.recordings, r)
	r.host.mu.Unlock()

	return r.fr.Stop()
}

// Release detaches and drops the recorder. Safe after Stop and after a
// failed Start.
func (r *recording) Release() {
	r.host.mu.Lock()
	if r.released {
		r.host.mu.Unlock()
		return
	}
	r.released = true
	r.active = false
	delete(r.host.recordings, r)
	r.host.mu.Unlock()

	r.fr.Release()
}

var _ ports.Recording = (*recording)(nil)
var _ ports.RecordingFactory = (*Host)(nil)
