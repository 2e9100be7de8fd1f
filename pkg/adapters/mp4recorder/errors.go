package mp4recorder

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("mp4recorder: ffmpeg not found")

	// ErrNotStarted is returned when frames arrive before Start.
	ErrNotStarted = errors.New("mp4recorder: recording not started")

	// ErrStopped is returned when frames arrive after Stop.
	ErrStopped = errors.New("mp4recorder: recording already stopped")

	// ErrUnsupportedFormat is returned for pixel formats ffmpeg's rawvideo
	// reader has no name for.
	ErrUnsupportedFormat = errors.New("mp4recorder: unsupported pixel format")

	// ErrUnsupportedCodec is returned for codecs other than h264/aac.
	ErrUnsupportedCodec = errors.New("mp4recorder: unsupported codec")

	// ErrGeometryChanged is returned when a frame's dimensions or format
	// differ from the first frame of the recording.
	ErrGeometryChanged = errors.New("mp4recorder: frame geometry changed mid-recording")
)
