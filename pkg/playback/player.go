// Package playback drains scene snapshots through the replay sink, either
// paced for live viewing or paced for a file recording running alongside.
package playback

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/user/replaycap/pkg/ports"
	"github.com/user/replaycap/pkg/ring"
)

const (
	// LiveFrameInterval paces live replay at roughly 30 fps.
	LiveFrameInterval = 33 * time.Millisecond

	// FileFrameInterval paces file emission at roughly 60 fps, matching the
	// capture rate.
	FileFrameInterval = 16 * time.Millisecond

	// FileFPS is the nominal frame rate declared to the file output.
	FileFPS = 60.0

	// Container and codecs of saved replay files.
	FileContainer  = "mp4"
	FileVideoCodec = "h264"
	FileAudioCodec = "aac"
)

// Pairing selects how cached audio is matched to cached video during
// emission.
type Pairing int

const (
	// PairByIndex emits audio[i] immediately before video[i] and stops
	// pairing when the shorter sequence runs out. Positional pairing is
	// what the cache's paired admission order supports; a timestamp-based
	// strategy would slot in here.
	PairByIndex Pairing = iota
)

// Player replays cached scenes. All methods are safe for concurrent use;
// each call works on its own snapshot and never holds the registry mutex
// while emitting or sleeping.
type Player struct {
	registry *ring.Registry
	host     ports.Host
	outputs  ports.RecordingFactory
	clock    ports.Clock
	logger   ports.Logger
	sinkName string
	outDir   string
	pairing  Pairing
}

// NewPlayer creates a player that resolves the named sink on every replay
// and writes files under outDir.
func NewPlayer(registry *ring.Registry, host ports.Host, outputs ports.RecordingFactory, clock ports.Clock, logger ports.Logger, sinkName, outDir string) *Player {
	return &Player{
		registry: registry,
		host:     host,
		outputs:  outputs,
		clock:    clock,
		logger:   logger,
		sinkName: sinkName,
		outDir:   outDir,
		pairing:  PairByIndex,
	}
}

// ReplayFilePath returns the file a scene's replay is saved to.
func ReplayFilePath(outDir, scene string) string {
	return filepath.Join(outDir, scene+"_replay.mp4")
}

// PlayLive emits the scene's cached frames through the replay sink at live
// pacing. The snapshot is taken once up front; admissions during playback
// don't affect it. ctx aborts the pacing sleep only; the engine's detached
// workers pass a background context.
func (p *Player) PlayLive(ctx context.Context, scene string) error {
	snap, err := p.registry.Snapshot(scene)
	if err != nil {
		return fmt.Errorf("live replay of %s: %w", scene, err)
	}
	defer snap.Release()

	if len(snap.Video) == 0 {
		return fmt.Errorf("live replay of %s: %w", scene, ErrNoCachedFrames)
	}

	sink, ok := p.host.FindSink(p.sinkName)
	if !ok {
		return fmt.Errorf("live replay of %s: %w", scene, ErrSinkMissing)
	}
	defer sink.Release()

	p.logger.Info("live replay of %s: %d video / %d audio frames", scene, len(snap.Video), len(snap.Audio))
	emitted, err := p.emit(ctx, snap, sink, LiveFrameInterval)
	if err != nil {
		return fmt.Errorf("live replay of %s after %d frames: %w", scene, emitted, err)
	}
	p.logger.Info("live replay of %s finished", scene)
	return nil
}

// SaveToFile records the scene's cached frames to
// <outDir>/<scene>_replay.mp4. The frames are re-emitted through the live
// replay sink at file pacing while the recording runs; the host's output
// observes that feed. On success the file exists at the returned-by-path
// location; on a start failure nothing is emitted.
func (p *Player) SaveToFile(ctx context.Context, scene string) error {
	snap, err := p.registry.Snapshot(scene)
	if err != nil {
		return fmt.Errorf("save replay of %s: %w", scene, err)
	}
	defer snap.Release()

	if len(snap.Video) == 0 {
		return fmt.Errorf("save replay of %s: %w", scene, ErrNoCachedFrames)
	}

	sink, ok := p.host.FindSink(p.sinkName)
	if !ok {
		return fmt.Errorf("save replay of %s: %w", scene, ErrSinkMissing)
	}
	defer sink.Release()

	path := ReplayFilePath(p.outDir, scene)
	settings := ports.RecordingSettings{
		Path:       path,
		Container:  FileContainer,
		VideoCodec: FileVideoCodec,
		AudioCodec: FileAudioCodec,
		Width:      snap.Video[0].Width,
		Height:     snap.Video[0].Height,
		FPS:        FileFPS,
		SampleRate: ports.DefaultSampleRate,
		Channels:   snapshotChannels(snap),
	}

	rec, err := p.outputs.NewRecording(settings)
	if err != nil {
		return fmt.Errorf("save replay of %s to %s: %w: %v", scene, path, ErrOutputStartFailed, err)
	}
	defer rec.Release()

	if err := rec.Start(); err != nil {
		return fmt.Errorf("save replay of %s to %s: %w: %v", scene, path, ErrOutputStartFailed, err)
	}

	p.logger.Info("saving replay of %s to %s: %d video / %d audio frames", scene, path, len(snap.Video), len(snap.Audio))
	emitted, emitErr := p.emit(ctx, snap, sink, FileFrameInterval)

	if err := rec.Stop(); err != nil {
		return fmt.Errorf("save replay of %s to %s: stop output: %w", scene, path, err)
	}
	if emitErr != nil {
		return fmt.Errorf("save replay of %s after %d frames: %w", scene, emitted, emitErr)
	}
	p.logger.Info("replay of %s saved to %s", scene, path)
	return nil
}

// emit drains the snapshot through the sink at the given pacing, one sleep
// per video frame.
func (p *Player) emit(ctx context.Context, snap ring.Snapshot, sink ports.Sink, interval time.Duration) (int, error) {
	for i, v := range snap.Video {
		switch p.pairing {
		case PairByIndex:
			if i < len(snap.Audio) {
				sink.OutputAudio(snap.Audio[i])
			}
		}
		sink.OutputVideo(v)
		if err := p.clock.Sleep(ctx, interval); err != nil {
			return i + 1, err
		}
	}
	return len(snap.Video), nil
}

// snapshotChannels derives the channel count declared to the file output
// from the first cached audio frame, defaulting to stereo.
func snapshotChannels(snap ring.Snapshot) int {
	if len(snap.Audio) == 0 {
		return 2
	}
	n := 0
	for _, ch := range snap.Audio[0].Channels {
		if ch != nil {
			n++
		}
	}
	if n == 0 {
		return 2
	}
	return n
}
