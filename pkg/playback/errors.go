package playback

import "errors"

var (
	// ErrNoCachedFrames is returned when a replay is requested for a scene
	// whose ring holds no video.
	ErrNoCachedFrames = errors.New("playback: no cached frames")

	// ErrSinkMissing is returned when the replay sink cannot be resolved in
	// the host's graph.
	ErrSinkMissing = errors.New("playback: replay sink missing")

	// ErrOutputStartFailed is returned when the file output cannot be
	// created or started. Nothing is emitted in that case.
	ErrOutputStartFailed = errors.New("playback: output start failed")
)
