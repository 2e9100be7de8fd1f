// Package ports defines the interfaces between the replay engine and the
// production host it embeds into, plus the environment abstractions
// (logging, clock, filesystem) used across the codebase.
package ports

import (
	"errors"

	"github.com/user/replaycap/pkg/frame"
)

// ErrSceneNotFound is returned by hosts when a program switch or sink
// creation targets a scene that does not exist.
var ErrSceneNotFound = errors.New("host: scene not found")

// RawVideo is a borrowed view of one video frame as delivered by the host's
// raw video callback. Plane slices alias host memory and are valid only for
// the duration of the callback; receivers must deep-copy anything they keep.
type RawVideo struct {
	Width       int
	Height      int
	Format      frame.PixelFormat
	TimestampNs uint64
	Planes      [][]byte
	Strides     []int
}

// RawAudio is a borrowed view of one audio delivery from a source's audio
// capture callback. Channel buffers hold planar float32 samples and alias
// host memory for the duration of the callback. Muted reflects the source's
// mute state at delivery time.
type RawAudio struct {
	SampleCount int
	TimestampNs uint64
	Channels    [][]byte
	Muted       bool
}

// VideoTap receives the host's program video feed.
type VideoTap func(RawVideo)

// AudioTap receives one source's audio feed.
type AudioTap func(RawAudio)

// SourceRole classifies a registered source kind within the host's graph.
type SourceRole int

const (
	// RoleSource is a regular input source.
	RoleSource SourceRole = iota
	// RoleVideoFilter is a filter attached to another source's video.
	RoleVideoFilter
)

// SourceInstance is one live instance of a registered source kind. The host
// calls VideoRender on its render thread and Destroy when the instance is
// removed from the graph.
type SourceInstance interface {
	VideoRender()
	Destroy()
}

// SourceKind describes a custom source kind to register with the host.
type SourceKind struct {
	ID          string
	Role        SourceRole
	DisplayName func() string
	Create      func() SourceInstance
}

// VendorHandler handles one vendor request. The payload and the returned
// response are JSON documents owned by the command transport.
type VendorHandler func(payload []byte) (response []byte)

// Host is the production host the engine embeds into. Implementations must
// be safe for concurrent use: the engine calls in from capture callbacks,
// detached replay workers, and the command transport at the same time.
//
// Handles returned by FindSink are acquired and must be released by the
// caller in matching pairs.
type Host interface {
	// Scene graph.
	Scenes() []string
	SceneExists(name string) bool
	CreateScene(name string) error
	CreateSink(sceneName, kind, name string) error
	FindSink(name string) (Sink, bool)

	// Program output.
	ProgramScene() string
	SetProgramScene(name string) error

	// Capture taps. The returned remove function unregisters the tap and is
	// safe to call once; AddAudioTap fails for unknown sources.
	AudioSources() []string
	AddRawVideoTap(tap VideoTap) (remove func())
	AddAudioTap(source string, tap AudioTap) (remove func(), err error)

	// Plugin ABI.
	RegisterSourceKind(kind SourceKind) error
	RegisterVendorRequest(vendor, request string, handler VendorHandler) error

	// Private data store and module paths.
	LoadPersistent(key string) (value string, ok bool)
	StorePersistent(key, value string) error
	ConfigDir() string
}
