package playback

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/mocks"
	"github.com/user/replaycap/pkg/ports"
	"github.com/user/replaycap/pkg/ring"
)

const testSinkName = "ReplaySource"

type playerFixture struct {
	registry *ring.Registry
	alloc    *mocks.CountingAllocator
	host     *mocks.Host
	sink     *mocks.Sink
	outputs  *mocks.RecordingFactory
	clock    *mocks.Clock
	player   *Player
}

func newPlayerFixture(t *testing.T) *playerFixture {
	t.Helper()
	alloc := mocks.NewCountingAllocator()
	registry := ring.NewRegistry(alloc)
	registry.SetEnabled(true)

	host := mocks.NewHost("Game", "Replay")
	sink := mocks.NewSink()
	host.Sinks[testSinkName] = sink

	outputs := mocks.NewRecordingFactory()
	clock := mocks.NewClock()

	player := NewPlayer(registry, host, outputs, clock, mocks.NewLogger(), testSinkName, "/replays")
	return &playerFixture{
		registry: registry,
		alloc:    alloc,
		host:     host,
		sink:     sink,
		outputs:  outputs,
		clock:    clock,
		player:   player,
	}
}

func (fx *playerFixture) cache(t *testing.T, scene string, videoFrames, audioFrames int) {
	t.Helper()
	fx.registry.Ensure(scene, videoFrames+audioFrames+8)
	for i := 0; i < videoFrames; i++ {
		stride := 4 * 4
		src := make([]byte, stride*4)
		v, err := frame.CopyVideo(fx.alloc, 4, 4, frame.FormatRGBA, uint64(i+1), [][]byte{src}, []int{stride})
		if err != nil {
			t.Fatalf("CopyVideo failed: %v", err)
		}
		if err := fx.registry.AdmitVideo(scene, v); err != nil {
			t.Fatalf("AdmitVideo failed: %v", err)
		}
	}
	for i := 0; i < audioFrames; i++ {
		src := make([]byte, 16*frame.AudioBytesPerSample)
		a, err := frame.CopyAudio(fx.alloc, 16, uint64(i+1), [][]byte{src, src})
		if err != nil {
			t.Fatalf("CopyAudio failed: %v", err)
		}
		if err := fx.registry.AdmitAudio(scene, a); err != nil {
			t.Fatalf("AdmitAudio failed: %v", err)
		}
	}
}

func TestPlayLivePairsByIndexAndPaces(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.cache(t, "Game", 5, 3)

	if err := fx.player.PlayLive(context.Background(), "Game"); err != nil {
		t.Fatalf("PlayLive failed: %v", err)
	}

	if fx.sink.VideoCount() != 5 {
		t.Errorf("Expected 5 video emissions, got %d", fx.sink.VideoCount())
	}
	if fx.sink.AudioCount() != 3 {
		t.Errorf("Expected 3 audio emissions, got %d", fx.sink.AudioCount())
	}
	if fx.sink.Released() != 1 {
		t.Errorf("Expected 1 sink release, got %d", fx.sink.Released())
	}

	if fx.clock.SleepCount() != 5 {
		t.Errorf("Expected 5 pacing sleeps, got %d", fx.clock.SleepCount())
	}
	for _, d := range fx.clock.SleepCalls {
		if d != LiveFrameInterval {
			t.Errorf("Expected %v pacing, got %v", LiveFrameInterval, d)
		}
	}

	// Index pairing: audio i is emitted with video i, so the first emitted
	// timestamps line up.
	if fx.sink.AudioTimestamps[0] != fx.sink.VideoTimestamps[0] {
		t.Errorf("Index pairing broken: audio ts %d vs video ts %d",
			fx.sink.AudioTimestamps[0], fx.sink.VideoTimestamps[0])
	}

	// The playback snapshot must be fully released afterwards.
	fx.registry.ClearAll()
	if fx.alloc.Outstanding() != 0 {
		t.Errorf("Replay leaked %d buffers", fx.alloc.Outstanding())
	}
}

func TestPlayLiveEmptyCache(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.registry.Ensure("Game", 8)

	err := fx.player.PlayLive(context.Background(), "Game")
	if !errors.Is(err, ErrNoCachedFrames) {
		t.Fatalf("Expected ErrNoCachedFrames, got: %v", err)
	}
	if len(fx.host.FindSinkCalls) != 0 {
		t.Error("sink must not be resolved when there is nothing to play")
	}
}

func TestPlayLiveUnknownScene(t *testing.T) {
	fx := newPlayerFixture(t)

	err := fx.player.PlayLive(context.Background(), "NoSuchScene")
	if !errors.Is(err, ring.ErrSceneUnknown) {
		t.Fatalf("Expected ErrSceneUnknown, got: %v", err)
	}
}

func TestPlayLiveSinkMissing(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.cache(t, "Game", 2, 0)
	delete(fx.host.Sinks, testSinkName)

	err := fx.player.PlayLive(context.Background(), "Game")
	if !errors.Is(err, ErrSinkMissing) {
		t.Fatalf("Expected ErrSinkMissing, got: %v", err)
	}

	fx.registry.ClearAll()
	if fx.alloc.Outstanding() != 0 {
		t.Errorf("Failed replay leaked %d buffers", fx.alloc.Outstanding())
	}
}

func TestPlayLiveHonorsContext(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.cache(t, "Game", 5, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := fx.player.PlayLive(ctx, "Game")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got: %v", err)
	}
	if fx.sink.VideoCount() != 1 {
		t.Errorf("Expected emission to stop after the first frame, got %d", fx.sink.VideoCount())
	}
	if fx.sink.Released() != 1 {
		t.Error("sink must be released on the cancellation path")
	}
}

func TestSaveToFileRecordsAroundEmission(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.cache(t, "Game", 4, 4)

	if err := fx.player.SaveToFile(context.Background(), "Game"); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	if fx.outputs.Created() != 1 {
		t.Fatalf("Expected 1 recording, got %d", fx.outputs.Created())
	}
	settings := fx.outputs.Settings[0]
	wantPath := filepath.Join("/replays", "Game_replay.mp4")
	if settings.Path != wantPath {
		t.Errorf("Expected path %s, got %s", wantPath, settings.Path)
	}
	if settings.Container != "mp4" || settings.VideoCodec != "h264" || settings.AudioCodec != "aac" {
		t.Errorf("Unexpected format: %s/%s/%s", settings.Container, settings.VideoCodec, settings.AudioCodec)
	}
	if settings.Width != 4 || settings.Height != 4 {
		t.Errorf("Expected 4x4 geometry, got %dx%d", settings.Width, settings.Height)
	}
	if settings.Channels != 2 {
		t.Errorf("Expected stereo, got %d channels", settings.Channels)
	}

	rec := fx.outputs.Recordings[0]
	if !rec.StartCalled || !rec.StopCalled || !rec.ReleaseCalled {
		t.Errorf("Recording lifecycle incomplete: start=%v stop=%v release=%v",
			rec.StartCalled, rec.StopCalled, rec.ReleaseCalled)
	}

	// File pacing, one sleep per video frame, and re-emission through the
	// live sink while the recording runs.
	if fx.clock.SleepCount() != 4 {
		t.Errorf("Expected 4 pacing sleeps, got %d", fx.clock.SleepCount())
	}
	for _, d := range fx.clock.SleepCalls {
		if d != FileFrameInterval {
			t.Errorf("Expected %v pacing, got %v", FileFrameInterval, d)
		}
	}
	if fx.sink.VideoCount() != 4 || fx.sink.AudioCount() != 4 {
		t.Errorf("Expected 4/4 sink emissions, got %d/%d", fx.sink.VideoCount(), fx.sink.AudioCount())
	}

	fx.registry.ClearAll()
	if fx.alloc.Outstanding() != 0 {
		t.Errorf("Save leaked %d buffers", fx.alloc.Outstanding())
	}
}

func TestSaveToFileStartFailure(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.cache(t, "Game", 2, 2)

	rec := &mocks.Recording{
		StartFunc: func() error { return errors.New("muxer refused") },
	}
	fx.outputs.NewRecordingFunc = func(settings ports.RecordingSettings) (ports.Recording, error) {
		return rec, nil
	}

	err := fx.player.SaveToFile(context.Background(), "Game")
	if !errors.Is(err, ErrOutputStartFailed) {
		t.Fatalf("Expected ErrOutputStartFailed, got: %v", err)
	}
	if fx.sink.VideoCount() != 0 || fx.sink.AudioCount() != 0 {
		t.Error("nothing may be emitted after a failed start")
	}
	if !rec.ReleaseCalled {
		t.Error("failed recording must still be released")
	}
	if rec.StopCalled {
		t.Error("Stop must not run after a failed start")
	}

	fx.registry.ClearAll()
	if fx.alloc.Outstanding() != 0 {
		t.Errorf("Failed save leaked %d buffers", fx.alloc.Outstanding())
	}
}

func TestSaveToFileFactoryFailure(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.cache(t, "Game", 1, 1)

	fx.outputs.NewRecordingFunc = func(settings ports.RecordingSettings) (ports.Recording, error) {
		return nil, errors.New("unsupported container")
	}

	err := fx.player.SaveToFile(context.Background(), "Game")
	if !errors.Is(err, ErrOutputStartFailed) {
		t.Fatalf("Expected ErrOutputStartFailed, got: %v", err)
	}
	if fx.sink.VideoCount() != 0 {
		t.Error("nothing may be emitted when the output cannot be created")
	}
}

func TestSaveToFileEmptyCache(t *testing.T) {
	fx := newPlayerFixture(t)
	fx.registry.Ensure("Game", 8)

	err := fx.player.SaveToFile(context.Background(), "Game")
	if !errors.Is(err, ErrNoCachedFrames) {
		t.Fatalf("Expected ErrNoCachedFrames, got: %v", err)
	}
	if fx.outputs.Created() != 0 {
		t.Error("no recording may be created for an empty cache")
	}
}

func TestReplayFilePath(t *testing.T) {
	got := ReplayFilePath("/replays", "My Scene")
	want := filepath.Join("/replays", "My Scene_replay.mp4")
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
