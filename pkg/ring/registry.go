package ring

import (
	"sort"
	"sync"

	"github.com/user/replaycap/pkg/frame"
)

// SceneStats reports the cache depth of one scene.
type SceneStats struct {
	Scene       string `json:"scene"`
	VideoFrames int    `json:"videoFrames"`
	AudioFrames int    `json:"audioFrames"`
}

// Registry maps scene names to their rings behind a single mutex. Every
// admission, snapshot and rebuild goes through it, and the enabled gate is
// checked under the same lock as the ring lookup so a disable can never
// race an insertion. Nothing sleeps or touches I/O while the lock is held;
// snapshots escape by value.
type Registry struct {
	mu      sync.Mutex
	alloc   frame.Allocator
	rings   map[string]*Ring
	enabled bool
}

// NewRegistry returns an empty, disabled registry. A nil allocator falls
// back to the heap allocator.
func NewRegistry(alloc frame.Allocator) *Registry {
	if alloc == nil {
		alloc = frame.NewHeapAllocator()
	}
	return &Registry{
		alloc: alloc,
		rings: make(map[string]*Ring),
	}
}

// Allocator returns the allocator shared by every ring in the registry.
func (r *Registry) Allocator() frame.Allocator {
	return r.alloc
}

// SetEnabled flips the admission gate. It does not touch ring contents;
// the lifecycle layer decides when to rebuild or clear.
func (r *Registry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// Enabled reports the admission gate.
func (r *Registry) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Rebuild makes the ring set exactly sceneNames: new scenes get fresh rings
// of the given capacity, scenes leaving the set have their frames released,
// and scenes staying keep their cached frames.
func (r *Registry) Rebuild(sceneNames []string, capacity int) {
	keep := make(map[string]struct{}, len(sceneNames))
	for _, name := range sceneNames {
		if name != "" {
			keep[name] = struct{}{}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, ring := range r.rings {
		if _, ok := keep[name]; !ok {
			ring.Clear()
			delete(r.rings, name)
		}
	}
	for name := range keep {
		if _, ok := r.rings[name]; !ok {
			r.rings[name] = NewRing(capacity, r.alloc)
		}
	}
}

// Ensure creates a ring for the scene if none exists. It is a no-op for an
// empty scene name, while disabled, and for scenes that already have a ring
// (an existing ring keeps its original capacity).
func (r *Registry) Ensure(sceneName string, capacity int) {
	if sceneName == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	if _, ok := r.rings[sceneName]; !ok {
		r.rings[sceneName] = NewRing(capacity, r.alloc)
	}
}

// AdmitVideo hands f to the scene's ring. Ownership of f transfers on the
// call: when disabled or the scene is unknown the frame is released and
// ErrDisabled or ErrSceneUnknown is returned.
func (r *Registry) AdmitVideo(sceneName string, f *frame.Video) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		f.Release(r.alloc)
		return ErrDisabled
	}
	ring, ok := r.rings[sceneName]
	if !ok {
		f.Release(r.alloc)
		return ErrSceneUnknown
	}
	return ring.AdmitVideo(f)
}

// AdmitAudio hands f to the scene's ring with the same ownership rules as
// AdmitVideo.
func (r *Registry) AdmitAudio(sceneName string, f *frame.Audio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		f.Release(r.alloc)
		return ErrDisabled
	}
	ring, ok := r.rings[sceneName]
	if !ok {
		f.Release(r.alloc)
		return ErrSceneUnknown
	}
	return ring.AdmitAudio(f)
}

// Snapshot returns a retained copy of the scene's cache, or ErrSceneUnknown.
// The caller releases the snapshot when done with it.
func (r *Registry) Snapshot(sceneName string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ring, ok := r.rings[sceneName]
	if !ok {
		return Snapshot{}, ErrSceneUnknown
	}
	s := ring.Snapshot()
	s.Scene = sceneName
	return s, nil
}

// ClearAll releases every cached frame in every ring. The ring set itself
// is kept; a later rebuild reconciles it against the host's scene list.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ring := range r.rings {
		ring.Clear()
	}
}

// Scenes returns the sorted names of all scenes with a ring.
func (r *Registry) Scenes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.rings))
	for name := range r.rings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SavableScenes returns the sorted names of scenes whose rings hold at
// least one video frame and at least one audio frame, the precondition for
// writing a replay file.
func (r *Registry) SavableScenes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.rings))
	for name, ring := range r.rings {
		if ring.VideoLen() > 0 && ring.AudioLen() > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Stats returns per-scene cache depths sorted by scene name.
func (r *Registry) Stats() []SceneStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := make([]SceneStats, 0, len(r.rings))
	for name, ring := range r.rings {
		stats = append(stats, SceneStats{
			Scene:       name,
			VideoFrames: ring.VideoLen(),
			AudioFrames: ring.AudioLen(),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Scene < stats[j].Scene })
	return stats
}
