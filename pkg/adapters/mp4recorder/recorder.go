// Package mp4recorder writes replay files as MP4. When an ffmpeg binary is
// available, frames are piped to an external ffmpeg process that encodes
// H.264/AAC. Without ffmpeg it falls back to writing a bare MP4 container so
// the save contract (a parseable file at the requested path) still holds on
// machines without an encoder.
package mp4recorder

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/user/replaycap/pkg/ports"
)

// customFFmpegPath overrides ffmpeg discovery when set via SetFFmpegPath.
var customFFmpegPath string

// SetFFmpegPath sets a custom ffmpeg binary path, bypassing discovery.
func SetFFmpegPath(path string) {
	customFFmpegPath = path
}

// IsFFmpegAvailable checks if ffmpeg is available on the system.
func IsFFmpegAvailable() bool {
	_, err := FindFFmpeg()
	return err == nil
}

// FindFFmpeg searches for ffmpeg in PATH and common locations.
// Priority: 1) SetFFmpegPath, 2) FFMPEG_PATH env, 3) PATH, 4) common locations
func FindFFmpeg() (string, error) {
	if customFFmpegPath != "" {
		if _, err := os.Stat(customFFmpegPath); err == nil {
			return customFFmpegPath, nil
		}
		return "", fmt.Errorf("%w: custom path %s not found", ErrFFmpegNotFound, customFFmpegPath)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
	} else if runtime.GOOS == "darwin" {
		commonPaths = []string{
			"/opt/homebrew/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/usr/bin/ffmpeg",
		}
	} else {
		commonPaths = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// Factory creates frame recorders. The backend is chosen once at
// construction time.
type Factory struct {
	ffmpegPath string
}

// New creates a factory using a discovered ffmpeg binary, or the container
// stub when none is installed.
func New() *Factory {
	path, err := FindFFmpeg()
	if err != nil {
		return &Factory{}
	}
	return &Factory{ffmpegPath: path}
}

// NewWithFFmpeg creates a factory bound to a specific ffmpeg binary. An
// empty path forces the container stub.
func NewWithFFmpeg(path string) *Factory {
	return &Factory{ffmpegPath: path}
}

// Backend names the selected backend for status output.
func (f *Factory) Backend() string {
	if f.ffmpegPath == "" {
		return "container-stub"
	}
	return "ffmpeg"
}

// NewFrameRecorder creates a recorder that finalizes a file at
// settings.Path on Stop.
func (f *Factory) NewFrameRecorder(settings ports.RecordingSettings) (ports.FrameRecorder, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	if f.ffmpegPath == "" {
		return newStubRecorder(settings), nil
	}
	return newFFmpegRecorder(f.ffmpegPath, settings), nil
}

func validateSettings(settings ports.RecordingSettings) error {
	if settings.Path == "" {
		return fmt.Errorf("mp4recorder: empty output path")
	}
	if settings.Container != "" && settings.Container != "mp4" {
		return fmt.Errorf("%w: container %q", ErrUnsupportedCodec, settings.Container)
	}
	if settings.VideoCodec != "" && settings.VideoCodec != "h264" {
		return fmt.Errorf("%w: video codec %q", ErrUnsupportedCodec, settings.VideoCodec)
	}
	if settings.AudioCodec != "" && settings.AudioCodec != "aac" {
		return fmt.Errorf("%w: audio codec %q", ErrUnsupportedCodec, settings.AudioCodec)
	}
	return nil
}

var _ ports.FrameRecorderFactory = (*Factory)(nil)
