package mocks

import (
	"sync"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
)

// Sink is a mock implementation of ports.Sink. Emitted frames are recorded
// by timestamp only, matching the contract that frames are borrowed for the
// duration of the call.
type Sink struct {
	mu sync.Mutex

	OutputVideoFunc func(f *frame.Video)
	OutputAudioFunc func(f *frame.Audio)

	VideoTimestamps []uint64
	AudioTimestamps []uint64
	ReleaseCalls    int
}

// NewSink creates a new mock sink.
func NewSink() *Sink {
	return &Sink{}
}

func (m *Sink) OutputVideo(f *frame.Video) {
	m.mu.Lock()
	m.VideoTimestamps = append(m.VideoTimestamps, f.TimestampNs)
	m.mu.Unlock()
	if m.OutputVideoFunc != nil {
		m.OutputVideoFunc(f)
	}
}

func (m *Sink) OutputAudio(f *frame.Audio) {
	m.mu.Lock()
	m.AudioTimestamps = append(m.AudioTimestamps, f.TimestampNs)
	m.mu.Unlock()
	if m.OutputAudioFunc != nil {
		m.OutputAudioFunc(f)
	}
}

func (m *Sink) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReleaseCalls++
}

// VideoCount returns the number of video frames emitted so far.
func (m *Sink) VideoCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.VideoTimestamps)
}

// AudioCount returns the number of audio frames emitted so far.
func (m *Sink) AudioCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.AudioTimestamps)
}

// Released returns how many times Release was called.
func (m *Sink) Released() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ReleaseCalls
}

var _ ports.Sink = (*Sink)(nil)
