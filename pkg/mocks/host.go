package mocks

import (
	"fmt"
	"sync"

	"github.com/user/replaycap/pkg/ports"
)

// CreateSinkCall records a call to CreateSink.
type CreateSinkCall struct {
	Scene string
	Kind  string
	Name  string
}

// Host is a mock implementation of ports.Host. By default it behaves like a
// minimal in-memory host: CreateScene extends the scene list, CreateSink
// registers a mock Sink that FindSink returns, taps fan out through
// EmitVideo/EmitAudio, and vendor handlers are invocable through Vendor.
// Every default can be overridden with the corresponding Func field.
type Host struct {
	mu sync.Mutex

	ScenesFunc                func() []string
	SceneExistsFunc           func(name string) bool
	CreateSceneFunc           func(name string) error
	CreateSinkFunc            func(sceneName, kind, name string) error
	FindSinkFunc              func(name string) (ports.Sink, bool)
	ProgramSceneFunc          func() string
	SetProgramSceneFunc       func(name string) error
	AudioSourcesFunc          func() []string
	RegisterSourceKindFunc    func(kind ports.SourceKind) error
	RegisterVendorRequestFunc func(vendor, request string, handler ports.VendorHandler) error
	LoadPersistentFunc        func(key string) (string, bool)
	StorePersistentFunc       func(key, value string) error
	ConfigDirFunc             func() string

	// Default in-memory state.
	SceneList       []string
	Program         string
	Sinks           map[string]ports.Sink
	AudioSourceList []string
	Persistent      map[string]string
	ConfigDirPath   string

	// Recorded calls for verification.
	CreateSceneCalls     []string
	CreateSinkCalls      []CreateSinkCall
	SetProgramSceneCalls []string
	FindSinkCalls        []string
	SourceKinds          []ports.SourceKind
	VideoTapRemovals     int
	AudioTapRemovals     int

	vendorHandlers map[string]ports.VendorHandler
	videoTaps      map[int]ports.VideoTap
	audioTaps      map[string]map[int]ports.AudioTap
	nextTapID      int
}

// NewHost creates a new mock host with the given scenes.
func NewHost(scenes ...string) *Host {
	return &Host{
		SceneList:      append([]string(nil), scenes...),
		Sinks:          make(map[string]ports.Sink),
		Persistent:     make(map[string]string),
		vendorHandlers: make(map[string]ports.VendorHandler),
		videoTaps:      make(map[int]ports.VideoTap),
		audioTaps:      make(map[string]map[int]ports.AudioTap),
	}
}

func (m *Host) Scenes() []string {
	if m.ScenesFunc != nil {
		return m.ScenesFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.SceneList...)
}

func (m *Host) SceneExists(name string) bool {
	if m.SceneExistsFunc != nil {
		return m.SceneExistsFunc(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sceneExistsLocked(name)
}

func (m *Host) sceneExistsLocked(name string) bool {
	for _, s := range m.SceneList {
		if s == name {
			return true
		}
	}
	return false
}

func (m *Host) CreateScene(name string) error {
	m.mu.Lock()
	m.CreateSceneCalls = append(m.CreateSceneCalls, name)
	m.mu.Unlock()
	if m.CreateSceneFunc != nil {
		return m.CreateSceneFunc(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sceneExistsLocked(name) {
		m.SceneList = append(m.SceneList, name)
	}
	return nil
}

func (m *Host) CreateSink(sceneName, kind, name string) error {
	m.mu.Lock()
	m.CreateSinkCalls = append(m.CreateSinkCalls, CreateSinkCall{Scene: sceneName, Kind: kind, Name: name})
	m.mu.Unlock()
	if m.CreateSinkFunc != nil {
		return m.CreateSinkFunc(sceneName, kind, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sceneExistsLocked(sceneName) {
		return ports.ErrSceneNotFound
	}
	if _, ok := m.Sinks[name]; !ok {
		m.Sinks[name] = NewSink()
	}
	return nil
}

func (m *Host) FindSink(name string) (ports.Sink, bool) {
	m.mu.Lock()
	m.FindSinkCalls = append(m.FindSinkCalls, name)
	m.mu.Unlock()
	if m.FindSinkFunc != nil {
		return m.FindSinkFunc(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sinks[name]
	return s, ok
}

func (m *Host) ProgramScene() string {
	if m.ProgramSceneFunc != nil {
		return m.ProgramSceneFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Program
}

func (m *Host) SetProgramScene(name string) error {
	m.mu.Lock()
	m.SetProgramSceneCalls = append(m.SetProgramSceneCalls, name)
	m.mu.Unlock()
	if m.SetProgramSceneFunc != nil {
		return m.SetProgramSceneFunc(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.sceneExistsLocked(name) {
		return ports.ErrSceneNotFound
	}
	m.Program = name
	return nil
}

func (m *Host) AudioSources() []string {
	if m.AudioSourcesFunc != nil {
		return m.AudioSourcesFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.AudioSourceList...)
}

func (m *Host) AddRawVideoTap(tap ports.VideoTap) (remove func()) {
	m.mu.Lock()
	id := m.nextTapID
	m.nextTapID++
	m.videoTaps[id] = tap
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.videoTaps[id]; ok {
			delete(m.videoTaps, id)
			m.VideoTapRemovals++
		}
	}
}

func (m *Host) AddAudioTap(source string, tap ports.AudioTap) (remove func(), err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, s := range m.AudioSourceList {
		if s == source {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("unknown audio source: %s", source)
	}
	if m.audioTaps[source] == nil {
		m.audioTaps[source] = make(map[int]ports.AudioTap)
	}
	id := m.nextTapID
	m.nextTapID++
	m.audioTaps[source][id] = tap
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.audioTaps[source][id]; ok {
			delete(m.audioTaps[source], id)
			m.AudioTapRemovals++
		}
	}, nil
}

func (m *Host) RegisterSourceKind(kind ports.SourceKind) error {
	m.mu.Lock()
	m.SourceKinds = append(m.SourceKinds, kind)
	m.mu.Unlock()
	if m.RegisterSourceKindFunc != nil {
		return m.RegisterSourceKindFunc(kind)
	}
	return nil
}

func (m *Host) RegisterVendorRequest(vendor, request string, handler ports.VendorHandler) error {
	if m.RegisterVendorRequestFunc != nil {
		return m.RegisterVendorRequestFunc(vendor, request, handler)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vendorHandlers[vendor+"/"+request] = handler
	return nil
}

func (m *Host) LoadPersistent(key string) (string, bool) {
	if m.LoadPersistentFunc != nil {
		return m.LoadPersistentFunc(key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.Persistent[key]
	return v, ok
}

func (m *Host) StorePersistent(key, value string) error {
	if m.StorePersistentFunc != nil {
		return m.StorePersistentFunc(key, value)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persistent[key] = value
	return nil
}

func (m *Host) ConfigDir() string {
	if m.ConfigDirFunc != nil {
		return m.ConfigDirFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ConfigDirPath
}

// EmitVideo delivers a raw video frame to every registered video tap, the
// way a host render callback would.
func (m *Host) EmitVideo(raw ports.RawVideo) {
	m.mu.Lock()
	taps := make([]ports.VideoTap, 0, len(m.videoTaps))
	for _, t := range m.videoTaps {
		taps = append(taps, t)
	}
	m.mu.Unlock()
	for _, t := range taps {
		t(raw)
	}
}

// EmitAudio delivers a raw audio frame to every tap registered on source.
func (m *Host) EmitAudio(source string, raw ports.RawAudio) {
	m.mu.Lock()
	taps := make([]ports.AudioTap, 0, len(m.audioTaps[source]))
	for _, t := range m.audioTaps[source] {
		taps = append(taps, t)
	}
	m.mu.Unlock()
	for _, t := range taps {
		t(raw)
	}
}

// Vendor invokes a registered vendor request handler, returning false when
// no handler matches.
func (m *Host) Vendor(vendor, request string, payload []byte) ([]byte, bool) {
	m.mu.Lock()
	handler, ok := m.vendorHandlers[vendor+"/"+request]
	m.mu.Unlock()
	if !ok {
		return nil, false
	}
	return handler(payload), true
}

// VideoTapCount returns the number of live video taps.
func (m *Host) VideoTapCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.videoTaps)
}

// AudioTapCount returns the number of live audio taps across all sources.
func (m *Host) AudioTapCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, taps := range m.audioTaps {
		n += len(taps)
	}
	return n
}

var _ ports.Host = (*Host)(nil)
