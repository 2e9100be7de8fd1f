// Package simhost is an in-memory production host for the simulation
// harness and integration tests: scene graph, program switching, capture
// tap fan-out, vendor request dispatch, persisted settings, and recordings
// that tee sink deliveries into a frame recorder.
package simhost

import (
	"fmt"
	"sync"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
)

type sinkEntry struct {
	kind       string
	refs       int
	videoCount int
	audioCount int
}

// Host implements ports.Host against in-memory state. All methods are safe
// for concurrent use; replay workers, the command transport, and the
// simulation loop all call in at once.
type Host struct {
	mu sync.Mutex

	order     []string
	scenes    map[string]bool
	program   string
	sinks     map[string]*sinkEntry
	audio     []string
	kinds     map[string]ports.SourceKind
	vendors   map[string]ports.VendorHandler
	persist   map[string]string
	configDir string

	videoTaps map[int]ports.VideoTap
	audioTaps map[string]map[int]ports.AudioTap
	nextTap   int

	recorders  ports.FrameRecorderFactory
	logger     ports.Logger
	recordings map[*recording]struct{}

	// SceneChanged, when set, runs after every successful program switch,
	// mirroring a host's scene-changed frontend event. Called without
	// internal locks held.
	SceneChanged func(scene string)
}

// New creates a host with the given scenes and audio sources. The first
// scene becomes the program scene. Recordings created through the host
// write through recorders.
func New(
	scenes []string,
	audioSources []string,
	configDir string,
	recorders ports.FrameRecorderFactory,
	logger ports.Logger,
) *Host {
	h := &Host{
		scenes:     make(map[string]bool),
		sinks:      make(map[string]*sinkEntry),
		kinds:      make(map[string]ports.SourceKind),
		vendors:    make(map[string]ports.VendorHandler),
		persist:    make(map[string]string),
		configDir:  configDir,
		videoTaps:  make(map[int]ports.VideoTap),
		audioTaps:  make(map[string]map[int]ports.AudioTap),
		recorders:  recorders,
		logger:     logger,
		recordings: make(map[*recording]struct{}),
	}
	for _, name := range scenes {
		if name == "" || h.scenes[name] {
			continue
		}
		h.scenes[name] = true
		h.order = append(h.order, name)
	}
	if len(h.order) > 0 {
		h.program = h.order[0]
	}
	h.audio = append(h.audio, audioSources...)
	return h
}

// Scenes returns the scene names in creation order.
func (h *Host) Scenes() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}

// SceneExists reports whether the named scene exists.
func (h *Host) SceneExists(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.scenes[name]
}

// CreateScene adds a scene. Creating an existing scene is a no-op.
func (h *Host) CreateScene(name string) error {
	if name == "" {
		return fmt.Errorf("simhost: empty scene name")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.scenes[name] {
		return nil
	}
	h.scenes[name] = true
	h.order = append(h.order, name)
	return nil
}

// CreateSink adds a named sink to a scene. The scene must exist; recreating
// an existing sink is a no-op.
func (h *Host) CreateSink(sceneName, kind, name string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.scenes[sceneName] {
		return fmt.Errorf("create sink %q: %w", name, ports.ErrSceneNotFound)
	}
	if _, ok := h.sinks[name]; ok {
		return nil
	}
	h.sinks[name] = &sinkEntry{kind: kind}
	return nil
}

// FindSink acquires a handle on a named sink. Each handle must be released
// once.
func (h *Host) FindSink(name string) (ports.Sink, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.sinks[name]
	if !ok {
		return nil, false
	}
	entry.refs++
	return &sinkHandle{host: h, entry: entry}, true
}

// ProgramScene returns the current program scene name.
func (h *Host) ProgramScene() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.program
}

// SetProgramScene switches the program output and fires the SceneChanged
// hook.
func (h *Host) SetProgramScene(name string) error {
	h.mu.Lock()
	if !h.scenes[name] {
		h.mu.Unlock()
		return fmt.Errorf("switch to %q: %w", name, ports.ErrSceneNotFound)
	}
	h.program = name
	hook := h.SceneChanged
	h.mu.Unlock()

	if hook != nil {
		hook(name)
	}
	return nil
}

// AudioSources returns the configured audio source names.
func (h *Host) AudioSources() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.audio...)
}

// AddRawVideoTap registers a program video tap.
func (h *Host) AddRawVideoTap(tap ports.VideoTap) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextTap
	h.nextTap++
	h.videoTaps[id] = tap

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.videoTaps, id)
		})
	}
}

// AddAudioTap registers a tap on one audio source's feed.
func (h *Host) AddAudioTap(source string, tap ports.AudioTap) (func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.hasAudioSource(source) {
		return nil, fmt.Errorf("simhost: unknown audio source %q", source)
	}
	id := h.nextTap
	h.nextTap++
	taps := h.audioTaps[source]
	if taps == nil {
		taps = make(map[int]ports.AudioTap)
		h.audioTaps[source] = taps
	}
	taps[id] = tap

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.audioTaps[source], id)
		})
	}, nil
}

func (h *Host) hasAudioSource(source string) bool {
	for _, s := range h.audio {
		if s == source {
			return true
		}
	}
	return false
}

// RegisterSourceKind registers a custom source kind. Duplicate IDs fail.
func (h *Host) RegisterSourceKind(kind ports.SourceKind) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.kinds[kind.ID]; ok {
		return fmt.Errorf("simhost: source kind %q already registered", kind.ID)
	}
	h.kinds[kind.ID] = kind
	return nil
}

// SourceKindByID returns a registered source kind.
func (h *Host) SourceKindByID(id string) (ports.SourceKind, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	kind, ok := h.kinds[id]
	return kind, ok
}

// RegisterVendorRequest registers a vendor request handler. Duplicate
// registrations fail.
func (h *Host) RegisterVendorRequest(vendor, request string, handler ports.VendorHandler) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := vendor + "/" + request
	if _, ok := h.vendors[key]; ok {
		return fmt.Errorf("simhost: vendor request %s already registered", key)
	}
	h.vendors[key] = handler
	return nil
}

// Dispatch routes a vendor request to its handler, as a host's IPC layer
// would. The second return is false for unregistered requests.
func (h *Host) Dispatch(vendor, request string, payload []byte) ([]byte, bool) {
	h.mu.Lock()
	handler, ok := h.vendors[vendor+"/"+request]
	h.mu.Unlock()
	if !ok {
		return nil, false
	}
	return handler(payload), true
}

// LoadPersistent reads a persisted module setting.
func (h *Host) LoadPersistent(key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.persist[key]
	return v, ok
}

// StorePersistent writes a persisted module setting.
func (h *Host) StorePersistent(key, value string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.persist[key] = value
	return nil
}

// ConfigDir returns the module config directory.
func (h *Host) ConfigDir() string {
	return h.configDir
}

// DeliverVideo feeds one raw frame to every video tap, as the host's render
// thread would for the program feed.
func (h *Host) DeliverVideo(raw ports.RawVideo) {
	h.mu.Lock()
	taps := make([]ports.VideoTap, 0, len(h.videoTaps))
	for _, tap := range h.videoTaps {
		taps = append(taps, tap)
	}
	h.mu.Unlock()
	for _, tap := range taps {
		tap(raw)
	}
}

// DeliverAudio feeds one raw chunk to the named source's taps.
func (h *Host) DeliverAudio(source string, raw ports.RawAudio) {
	h.mu.Lock()
	taps := make([]ports.AudioTap, 0, len(h.audioTaps[source]))
	for _, tap := range h.audioTaps[source] {
		taps = append(taps, tap)
	}
	h.mu.Unlock()
	for _, tap := range taps {
		tap(raw)
	}
}

// SinkDeliveries reports how many video and audio frames have been emitted
// through the named sink.
func (h *Host) SinkDeliveries(name string) (video, audio int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	entry, ok := h.sinks[name]
	if !ok {
		return 0, 0
	}
	return entry.videoCount, entry.audioCount
}

// sinkHandle is one acquired reference to a sink. Deliveries count on the
// entry and tee into active recordings.
type sinkHandle struct {
	host  *Host
	entry *sinkEntry
	once  sync.Once
}

// OutputVideo displays one video frame through the sink.
func (s *sinkHandle) OutputVideo(f *frame.Video) {
	s.host.mu.Lock()
	s.entry.videoCount++
	recs := s.host.activeRecordings()
	s.host.mu.Unlock()

	for _, rec := range recs {
		if err := rec.fr.WriteVideo(f); err != nil && s.host.logger != nil {
			s.host.logger.Warn("recording dropped a video frame: %v", err)
		}
	}
}

// OutputAudio plays one audio frame through the sink.
func (s *sinkHandle) OutputAudio(f *frame.Audio) {
	s.host.mu.Lock()
	s.entry.audioCount++
	recs := s.host.activeRecordings()
	s.host.mu.Unlock()

	for _, rec := range recs {
		if err := rec.fr.WriteAudio(f); err != nil && s.host.logger != nil {
			s.host.logger.Warn("recording dropped an audio frame: %v", err)
		}
	}
}

// Release returns the handle. Safe to call once per FindSink.
func (s *sinkHandle) Release() {
	s.once.Do(func() {
		s.host.mu.Lock()
		defer s.host.mu.Unlock()
		s.entry.refs--
	})
}

func (h *Host) activeRecordings() []*recording {
	recs := make([]*recording, 0, len(h.recordings))
	for rec := range h.recordings {
		recs = append(recs, rec)
	}
	return recs
}

var _ ports.Host = (*Host)(nil)
var _ ports.Sink = (*sinkHandle)(nil)
