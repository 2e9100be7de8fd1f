// Package capture subscribes to the host's raw media taps and feeds owned
// copies into the scene rings.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
	"github.com/user/replaycap/pkg/ring"
)

// Reporter receives recoverable capture failures for the engine's error log.
type Reporter func(err error, context string)

// Feeder owns the host tap registrations. Video deliveries are copied into
// the ring of the current program scene, created lazily on first sight;
// audio deliveries are copied into the ring named after their source and
// silently discarded when no such ring exists. Callbacks run on host
// threads: they never block on I/O and take only the registry mutex.
type Feeder struct {
	host     ports.Host
	registry *ring.Registry
	alloc    frame.Allocator
	capacity int
	logger   ports.Logger
	report   Reporter

	mu      sync.Mutex
	removes []func()
	running bool
}

// NewFeeder creates a feeder. The ring capacity applies to rings the feeder
// creates lazily for scenes it has not seen before. report may be nil.
func NewFeeder(host ports.Host, registry *ring.Registry, capacity int, logger ports.Logger, report Reporter) *Feeder {
	return &Feeder{
		host:     host,
		registry: registry,
		alloc:    registry.Allocator(),
		capacity: capacity,
		logger:   logger,
		report:   report,
	}
}

// Start registers the program video tap and one audio tap per audio-capable
// source. Starting an already running feeder is a no-op. Sources that
// refuse a tap are logged and skipped.
func (f *Feeder) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.running {
		return
	}

	f.removes = append(f.removes, f.host.AddRawVideoTap(f.onVideo))

	sources := f.host.AudioSources()
	attached := 0
	for _, source := range sources {
		src := source
		remove, err := f.host.AddAudioTap(src, func(raw ports.RawAudio) {
			f.onAudio(src, raw)
		})
		if err != nil {
			f.logger.Warn("audio tap rejected for %s: %v", src, err)
			continue
		}
		f.removes = append(f.removes, remove)
		attached++
	}

	f.running = true
	f.logger.Info("capture started: video tap plus %d audio taps", attached)
}

// Stop removes every registered tap. Stopping a stopped feeder is a no-op.
func (f *Feeder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.running {
		return
	}
	for _, remove := range f.removes {
		remove()
	}
	f.removes = nil
	f.running = false
	f.logger.Info("capture stopped")
}

// Running reports whether taps are currently registered.
func (f *Feeder) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *Feeder) onVideo(raw ports.RawVideo) {
	// Cheap gate before the copy; the authoritative check runs under the
	// registry mutex at admission.
	if !f.registry.Enabled() {
		return
	}
	scene := f.host.ProgramScene()
	if scene == "" {
		return
	}

	copied, err := frame.CopyVideo(f.alloc, raw.Width, raw.Height, raw.Format, raw.TimestampNs, raw.Planes, raw.Strides)
	if err != nil {
		f.reportErr(err, fmt.Sprintf("video delivery for scene %s rejected", scene))
		return
	}

	f.registry.Ensure(scene, f.capacity)
	if err := f.registry.AdmitVideo(scene, copied); err != nil {
		f.handleAdmitErr(err, "video", scene)
	}
}

func (f *Feeder) onAudio(source string, raw ports.RawAudio) {
	if raw.Muted || !f.registry.Enabled() {
		return
	}

	copied, err := frame.CopyAudio(f.alloc, raw.SampleCount, raw.TimestampNs, raw.Channels)
	if err != nil {
		f.reportErr(err, fmt.Sprintf("audio delivery from %s rejected", source))
		return
	}

	if err := f.registry.AdmitAudio(source, copied); err != nil {
		f.handleAdmitErr(err, "audio", source)
	}
}

func (f *Feeder) handleAdmitErr(err error, kind, key string) {
	switch {
	case errors.Is(err, ring.ErrSceneUnknown):
		// Audio sources rarely match a scene name; the copy was released
		// by the registry and the delivery is dropped.
		f.logger.Debug("%s delivery dropped, no ring for %s", kind, key)
	case errors.Is(err, ring.ErrDisabled):
		f.logger.Debug("%s delivery dropped, capture disabled", kind)
	default:
		f.reportErr(err, fmt.Sprintf("%s admission for %s failed", kind, key))
	}
}

func (f *Feeder) reportErr(err error, context string) {
	f.logger.Error("%s: %v", context, err)
	if f.report != nil {
		f.report(err, context)
	}
}
