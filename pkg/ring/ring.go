// Package ring caches the most recent seconds of video and audio per scene.
// A Ring is a fixed-capacity FIFO of refcounted frames with evict-oldest
// overflow; the Registry maps scene names to rings and owns the single
// mutex every caller goes through.
package ring

import (
	"github.com/user/replaycap/pkg/frame"
)

// Ring holds up to capacity video frames and capacity audio frames for one
// scene, each sequence ordered oldest to newest. A Ring is not safe for
// concurrent use; everything outside this package reaches rings through the
// Registry.
type Ring struct {
	capacity int
	alloc    frame.Allocator

	video  []*frame.Video
	vHead  int
	vCount int

	audio  []*frame.Audio
	aHead  int
	aCount int
}

// NewRing returns a ring bounded to capacity frames per sequence. A zero or
// negative capacity yields a ring that discards every admission.
func NewRing(capacity int, alloc frame.Allocator) *Ring {
	r := &Ring{capacity: capacity, alloc: alloc}
	if capacity > 0 {
		r.video = make([]*frame.Video, capacity)
		r.audio = make([]*frame.Audio, capacity)
	}
	return r
}

// AdmitVideo appends f as the newest video frame, evicting and releasing
// the oldest when full. AdmitVideo takes ownership of f in every outcome:
// invalid frames are released and rejected with ErrInvalidFrame, and a
// zero-capacity ring releases f immediately.
func (r *Ring) AdmitVideo(f *frame.Video) error {
	if !f.Valid() {
		f.Release(r.alloc)
		return ErrInvalidFrame
	}
	if r.capacity <= 0 {
		f.Release(r.alloc)
		return nil
	}
	if r.vCount == r.capacity {
		r.video[r.vHead].Release(r.alloc)
		r.video[r.vHead] = nil
		r.vHead = (r.vHead + 1) % r.capacity
		r.vCount--
	}
	r.video[(r.vHead+r.vCount)%r.capacity] = f
	r.vCount++
	return nil
}

// AdmitAudio appends f as the newest audio frame with the same ownership
// and overflow rules as AdmitVideo.
func (r *Ring) AdmitAudio(f *frame.Audio) error {
	if !f.Valid() {
		f.Release(r.alloc)
		return ErrInvalidFrame
	}
	if r.capacity <= 0 {
		f.Release(r.alloc)
		return nil
	}
	if r.aCount == r.capacity {
		r.audio[r.aHead].Release(r.alloc)
		r.audio[r.aHead] = nil
		r.aHead = (r.aHead + 1) % r.capacity
		r.aCount--
	}
	r.audio[(r.aHead+r.aCount)%r.capacity] = f
	r.aCount++
	return nil
}

// Snapshot returns the current contents oldest-first with one extra
// reference per frame, so later admissions and evictions cannot invalidate
// it. The caller must call Release on the snapshot when done.
func (r *Ring) Snapshot() Snapshot {
	s := Snapshot{alloc: r.alloc}
	if r.vCount > 0 {
		s.Video = make([]*frame.Video, 0, r.vCount)
		for i := 0; i < r.vCount; i++ {
			s.Video = append(s.Video, r.video[(r.vHead+i)%r.capacity].Retain())
		}
	}
	if r.aCount > 0 {
		s.Audio = make([]*frame.Audio, 0, r.aCount)
		for i := 0; i < r.aCount; i++ {
			s.Audio = append(s.Audio, r.audio[(r.aHead+i)%r.capacity].Retain())
		}
	}
	return s
}

// Clear releases every cached frame and empties both sequences.
func (r *Ring) Clear() {
	for i := 0; i < r.vCount; i++ {
		idx := (r.vHead + i) % r.capacity
		r.video[idx].Release(r.alloc)
		r.video[idx] = nil
	}
	for i := 0; i < r.aCount; i++ {
		idx := (r.aHead + i) % r.capacity
		r.audio[idx].Release(r.alloc)
		r.audio[idx] = nil
	}
	r.vHead, r.vCount = 0, 0
	r.aHead, r.aCount = 0, 0
}

// VideoLen returns the number of cached video frames.
func (r *Ring) VideoLen() int { return r.vCount }

// AudioLen returns the number of cached audio frames.
func (r *Ring) AudioLen() int { return r.aCount }

// Snapshot is a point-in-time copy of one scene's cache: frame handles in
// oldest-first order, each retained on behalf of the holder. Snapshots are
// passed by value and stay valid regardless of what the ring does next.
type Snapshot struct {
	Scene string
	Video []*frame.Video
	Audio []*frame.Audio

	alloc frame.Allocator
}

// Release drops the snapshot's references. Safe on an empty snapshot and
// safe to call exactly once per snapshot copy holder.
func (s *Snapshot) Release() {
	for _, v := range s.Video {
		v.Release(s.alloc)
	}
	for _, a := range s.Audio {
		a.Release(s.alloc)
	}
	s.Video = nil
	s.Audio = nil
}
