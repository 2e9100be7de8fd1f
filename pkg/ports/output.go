package ports

import "github.com/user/replaycap/pkg/frame"

// DefaultSampleRate is the host's audio mixer rate assumed for recordings.
const DefaultSampleRate = 48000

// RecordingSettings configures one file recording handed to the host muxer.
type RecordingSettings struct {
	Path       string
	Container  string
	VideoCodec string
	AudioCodec string
	Width      int
	Height     int
	FPS        float64
	SampleRate int
	Channels   int
}

// Recording is the opaque output handle the host supplies for writing a
// replay file. The engine only starts and stops it; the host's muxer decides
// what it records (conventionally the program feed). Release must be called
// exactly once, after Stop or after a failed Start.
type Recording interface {
	Start() error
	Stop() error
	Release()
}

// RecordingFactory creates recordings bound to the given settings.
type RecordingFactory interface {
	NewRecording(settings RecordingSettings) (Recording, error)
}

// FrameRecorder is the muxer backend a host implementation records with:
// frames go in between Start and Stop, Stop finalizes the file at
// Settings.Path. Unlike Recording this interface sees the actual frames;
// host implementations bridge their program feed into it.
type FrameRecorder interface {
	Start() error
	WriteVideo(f *frame.Video) error
	WriteAudio(f *frame.Audio) error
	Stop() error
	Release()
}

// FrameRecorderFactory creates frame recorders for host implementations.
type FrameRecorderFactory interface {
	NewFrameRecorder(settings RecordingSettings) (FrameRecorder, error)
}
