// Package report builds human-readable summaries of a capture session.
package report

import "time"

// Summary collects everything worth reporting once a session ends.
type Summary struct {
	GeneratedAt time.Time

	// Session settings and throughput
	Session SessionInfo

	// Per-scene cache occupancy at the end of the run
	Cache []SceneCache

	// Replay files written during the run
	Saved []SavedFile

	// Failures the engine recorded along the way
	Errors []string
}

// SessionInfo describes the session configuration and how much material
// flowed through it.
type SessionInfo struct {
	DurationMs int
	FramesFed  int

	Scenes       []string
	AudioSources []string

	Width       int
	Height      int
	FPS         float64
	PixelFormat string

	CacheSeconds int
	Backend      string
	OutputDir    string
}

// SceneCache reports ring occupancy for one scene.
type SceneCache struct {
	Scene       string
	VideoFrames int
	AudioFrames int
}

// SavedFile describes one replay file written to disk.
type SavedFile struct {
	Path string
	Size int64
}

// NewSummary creates a new Summary stamped with the current time.
func NewSummary() *Summary {
	return &Summary{GeneratedAt: time.Now()}
}

// Builder provides a fluent interface for assembling a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{summary: NewSummary()}
}

// WithSession sets session settings and throughput.
func (b *Builder) WithSession(info SessionInfo) *Builder {
	b.summary.Session = info
	return b
}

// WithCache sets per-scene cache occupancy.
func (b *Builder) WithCache(cache []SceneCache) *Builder {
	b.summary.Cache = cache
	return b
}

// WithSaved sets the list of written replay files.
func (b *Builder) WithSaved(files []SavedFile) *Builder {
	b.summary.Saved = files
	return b
}

// WithErrors sets the failures recorded during the run.
func (b *Builder) WithErrors(errs []string) *Builder {
	b.summary.Errors = errs
	return b
}

// Build returns the assembled Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
