package ports

import "github.com/user/replaycap/pkg/frame"

// Sink is a source inside the host's graph that accepts frames
// programmatically, such as the replay scene's media consumer.
//
// Frames passed to OutputVideo/OutputAudio stay owned by the caller and are
// valid only for the duration of the call; a sink that keeps a frame beyond
// the call must Retain it. Release returns the handle obtained from
// Host.FindSink; each successful FindSink requires exactly one Release.
type Sink interface {
	OutputVideo(f *frame.Video)
	OutputAudio(f *frame.Audio)
	Release()
}
