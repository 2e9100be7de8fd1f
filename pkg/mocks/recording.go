package mocks

import (
	"sync"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
)

// Recording is a mock implementation of ports.Recording.
type Recording struct {
	StartFunc func() error
	StopFunc  func() error

	StartCalled   bool
	StopCalled    bool
	ReleaseCalled bool
}

func (m *Recording) Start() error {
	m.StartCalled = true
	if m.StartFunc != nil {
		return m.StartFunc()
	}
	return nil
}

func (m *Recording) Stop() error {
	m.StopCalled = true
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	return nil
}

func (m *Recording) Release() {
	m.ReleaseCalled = true
}

var _ ports.Recording = (*Recording)(nil)

// RecordingFactory is a mock implementation of ports.RecordingFactory. By
// default every call returns a fresh Recording, all of which are kept for
// verification.
type RecordingFactory struct {
	mu sync.Mutex

	NewRecordingFunc func(settings ports.RecordingSettings) (ports.Recording, error)

	Settings   []ports.RecordingSettings
	Recordings []*Recording
}

// NewRecordingFactory creates a new mock factory.
func NewRecordingFactory() *RecordingFactory {
	return &RecordingFactory{}
}

func (m *RecordingFactory) NewRecording(settings ports.RecordingSettings) (ports.Recording, error) {
	m.mu.Lock()
	m.Settings = append(m.Settings, settings)
	m.mu.Unlock()

	if m.NewRecordingFunc != nil {
		return m.NewRecordingFunc(settings)
	}

	rec := &Recording{}
	m.mu.Lock()
	m.Recordings = append(m.Recordings, rec)
	m.mu.Unlock()
	return rec, nil
}

// Created returns the number of recordings handed out.
func (m *RecordingFactory) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Settings)
}

var _ ports.RecordingFactory = (*RecordingFactory)(nil)

// FrameRecorder is a mock implementation of ports.FrameRecorder.
type FrameRecorder struct {
	mu sync.Mutex

	StartFunc      func() error
	WriteVideoFunc func(f *frame.Video) error
	WriteAudioFunc func(f *frame.Audio) error
	StopFunc       func() error

	StartCalled   bool
	StopCalled    bool
	ReleaseCalled bool
	VideoWrites   int
	AudioWrites   int
}

func (m *FrameRecorder) Start() error {
	m.StartCalled = true
	if m.StartFunc != nil {
		return m.StartFunc()
	}
	return nil
}

func (m *FrameRecorder) WriteVideo(f *frame.Video) error {
	m.mu.Lock()
	m.VideoWrites++
	m.mu.Unlock()
	if m.WriteVideoFunc != nil {
		return m.WriteVideoFunc(f)
	}
	return nil
}

func (m *FrameRecorder) WriteAudio(f *frame.Audio) error {
	m.mu.Lock()
	m.AudioWrites++
	m.mu.Unlock()
	if m.WriteAudioFunc != nil {
		return m.WriteAudioFunc(f)
	}
	return nil
}

func (m *FrameRecorder) Stop() error {
	m.StopCalled = true
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	return nil
}

func (m *FrameRecorder) Release() {
	m.ReleaseCalled = true
}

var _ ports.FrameRecorder = (*FrameRecorder)(nil)

// FrameRecorderFactory is a mock implementation of ports.FrameRecorderFactory.
type FrameRecorderFactory struct {
	mu sync.Mutex

	NewFrameRecorderFunc func(settings ports.RecordingSettings) (ports.FrameRecorder, error)

	Settings  []ports.RecordingSettings
	Recorders []*FrameRecorder
}

func (m *FrameRecorderFactory) NewFrameRecorder(settings ports.RecordingSettings) (ports.FrameRecorder, error) {
	m.mu.Lock()
	m.Settings = append(m.Settings, settings)
	m.mu.Unlock()

	if m.NewFrameRecorderFunc != nil {
		return m.NewFrameRecorderFunc(settings)
	}

	rec := &FrameRecorder{}
	m.mu.Lock()
	m.Recorders = append(m.Recorders, rec)
	m.mu.Unlock()
	return rec, nil
}

var _ ports.FrameRecorderFactory = (*FrameRecorderFactory)(nil)
