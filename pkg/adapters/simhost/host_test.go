package simhost

import (
	"errors"
	"sync"
	"testing"

	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/mocks"
	"github.com/user/replaycap/pkg/ports"
)

func newTestHost(t *testing.T) (*Host, *mocks.FrameRecorderFactory) {
	t.Helper()
	recorders := &mocks.FrameRecorderFactory{}
	h := New([]string{"Game", "Lobby"}, []string{"Game", "Desktop Mic"}, t.TempDir(), recorders, mocks.NewLogger())
	return h, recorders
}

func rawVideo(ts uint64) ports.RawVideo {
	plane := make([]byte, 8*8*4)
	return ports.RawVideo{
		Width:       8,
		Height:      8,
		Format:      frame.FormatRGBA,
		TimestampNs: ts,
		Planes:      [][]byte{plane},
		Strides:     []int{8 * 4},
	}
}

func cachedVideo(t *testing.T, ts uint64) *frame.Video {
	t.Helper()
	raw := rawVideo(ts)
	f, err := frame.CopyVideo(frame.NewHeapAllocator(), raw.Width, raw.Height, raw.Format, raw.TimestampNs, raw.Planes, raw.Strides)
	if err != nil {
		t.Fatalf("CopyVideo: %v", err)
	}
	return f
}

func TestSceneGraphBasics(t *testing.T) {
	h, _ := newTestHost(t)

	if got := h.Scenes(); len(got) != 2 || got[0] != "Game" || got[1] != "Lobby" {
		t.Fatalf("Scenes() = %v, want [Game Lobby]", got)
	}
	if h.ProgramScene() != "Game" {
		t.Errorf("program = %q, want Game", h.ProgramScene())
	}

	if err := h.CreateScene("Replay"); err != nil {
		t.Fatalf("CreateScene: %v", err)
	}
	if err := h.CreateScene("Replay"); err != nil {
		t.Fatalf("duplicate CreateScene: %v", err)
	}
	if got := h.Scenes(); len(got) != 3 {
		t.Errorf("Scenes() = %v, want 3 entries", got)
	}

	if err := h.SetProgramScene("Nope"); !errors.Is(err, ports.ErrSceneNotFound) {
		t.Errorf("switch to missing scene = %v, want ErrSceneNotFound", err)
	}
	if err := h.SetProgramScene("Lobby"); err != nil {
		t.Fatalf("SetProgramScene: %v", err)
	}
	if h.ProgramScene() != "Lobby" {
		t.Errorf("program = %q after switch, want Lobby", h.ProgramScene())
	}
}

func TestSceneChangedHook(t *testing.T) {
	h, _ := newTestHost(t)
	var mu sync.Mutex
	var switches []string
	h.SceneChanged = func(scene string) {
		mu.Lock()
		switches = append(switches, scene)
		mu.Unlock()
	}

	if err := h.SetProgramScene("Lobby"); err != nil {
		t.Fatalf("SetProgramScene: %v", err)
	}
	_ = h.SetProgramScene("Nope")

	mu.Lock()
	defer mu.Unlock()
	if len(switches) != 1 || switches[0] != "Lobby" {
		t.Errorf("hook fired for %v, want [Lobby] only", switches)
	}
}

func TestSinkLifecycle(t *testing.T) {
	h, _ := newTestHost(t)

	if err := h.CreateSink("Nope", "media_consumer", "ReplaySource"); !errors.Is(err, ports.ErrSceneNotFound) {
		t.Errorf("sink in missing scene = %v, want ErrSceneNotFound", err)
	}
	if err := h.CreateSink("Game", "media_consumer", "ReplaySource"); err != nil {
		t.Fatalf("CreateSink: %v", err)
	}
	if err := h.CreateSink("Game", "media_consumer", "ReplaySource"); err != nil {
		t.Fatalf("duplicate CreateSink: %v", err)
	}

	sink, ok := h.FindSink("ReplaySource")
	if !ok {
		t.Fatal("FindSink failed for existing sink")
	}
	f := cachedVideo(t, 1)
	sink.OutputVideo(f)
	sink.OutputVideo(f)
	sink.Release()
	sink.Release() // second release is a no-op

	video, audio := h.SinkDeliveries("ReplaySource")
	if video != 2 || audio != 0 {
		t.Errorf("deliveries = %d video / %d audio, want 2/0", video, audio)
	}

	if _, ok := h.FindSink("Missing"); ok {
		t.Error("FindSink returned a handle for a missing sink")
	}
}

func TestTapFanOutAndRemoval(t *testing.T) {
	h, _ := newTestHost(t)

	var mu sync.Mutex
	videoSeen, audioSeen := 0, 0
	removeVideo := h.AddRawVideoTap(func(ports.RawVideo) {
		mu.Lock()
		videoSeen++
		mu.Unlock()
	})
	removeAudio, err := h.AddAudioTap("Game", func(ports.RawAudio) {
		mu.Lock()
		audioSeen++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("AddAudioTap: %v", err)
	}

	if _, err := h.AddAudioTap("Unknown", func(ports.RawAudio) {}); err == nil {
		t.Error("tap on unknown audio source accepted")
	}

	h.DeliverVideo(rawVideo(1))
	h.DeliverAudio("Game", ports.RawAudio{SampleCount: 4, Channels: [][]byte{make([]byte, 16)}})
	h.DeliverAudio("Desktop Mic", ports.RawAudio{SampleCount: 4, Channels: [][]byte{make([]byte, 16)}})

	removeVideo()
	removeVideo() // idempotent
	removeAudio()

	h.DeliverVideo(rawVideo(2))
	h.DeliverAudio("Game", ports.RawAudio{SampleCount: 4, Channels: [][]byte{make([]byte, 16)}})

	mu.Lock()
	defer mu.Unlock()
	if videoSeen != 1 {
		t.Errorf("video tap saw %d frames, want 1", videoSeen)
	}
	if audioSeen != 1 {
		t.Errorf("audio tap saw %d chunks, want 1", audioSeen)
	}
}

func TestVendorDispatch(t *testing.T) {
	h, _ := newTestHost(t)

	err := h.RegisterVendorRequest("replay-plugin", "ReplayScene", func(payload []byte) []byte {
		return []byte(`{"success":true}`)
	})
	if err != nil {
		t.Fatalf("RegisterVendorRequest: %v", err)
	}
	if err := h.RegisterVendorRequest("replay-plugin", "ReplayScene", func([]byte) []byte { return nil }); err == nil {
		t.Error("duplicate vendor registration accepted")
	}

	resp, ok := h.Dispatch("replay-plugin", "ReplayScene", []byte(`{}`))
	if !ok {
		t.Fatal("Dispatch failed for registered request")
	}
	if string(resp) != `{"success":true}` {
		t.Errorf("response = %s", resp)
	}
	if _, ok := h.Dispatch("replay-plugin", "Missing", nil); ok {
		t.Error("Dispatch succeeded for unregistered request")
	}
}

func TestPersistentStore(t *testing.T) {
	h, _ := newTestHost(t)

	if _, ok := h.LoadPersistent("enabled"); ok {
		t.Error("empty store returned a value")
	}
	if err := h.StorePersistent("enabled", "true"); err != nil {
		t.Fatalf("StorePersistent: %v", err)
	}
	v, ok := h.LoadPersistent("enabled")
	if !ok || v != "true" {
		t.Errorf("LoadPersistent = %q/%v, want true/true", v, ok)
	}
}

func TestRecordingTeesSinkFeed(t *testing.T) {
	h, recorders := newTestHost(t)
	if err := h.CreateSink("Game", "media_consumer", "ReplaySource"); err != nil {
		t.Fatalf("CreateSink: %v", err)
	}

	rec, err := h.NewRecording(ports.RecordingSettings{Path: "/replays/Game_replay.mp4"})
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}

	sink, _ := h.FindSink("ReplaySource")
	defer sink.Release()
	f := cachedVideo(t, 1)

	// before Start: nothing recorded
	sink.OutputVideo(f)

	if err := rec.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sink.OutputVideo(f)
	sink.OutputVideo(f)
	if err := rec.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	// after Stop: feed no longer observed
	sink.OutputVideo(f)
	rec.Release()

	if len(recorders.Recorders) != 1 {
		t.Fatalf("created %d frame recorders, want 1", len(recorders.Recorders))
	}
	fr := recorders.Recorders[0]
	if !fr.StartCalled || !fr.StopCalled || !fr.ReleaseCalled {
		t.Error("frame recorder lifecycle incomplete")
	}
	if fr.VideoWrites != 2 {
		t.Errorf("recorded %d video frames, want 2", fr.VideoWrites)
	}
}

func TestRecordingStartFailureDoesNotAttach(t *testing.T) {
	h, recorders := newTestHost(t)
	failing := &mocks.FrameRecorder{StartFunc: func() error { return errors.New("disk full") }}
	recorders.NewFrameRecorderFunc = func(ports.RecordingSettings) (ports.FrameRecorder, error) {
		return failing, nil
	}

	rec, err := h.NewRecording(ports.RecordingSettings{Path: "/replays/Game_replay.mp4"})
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	if err := rec.Start(); err == nil {
		t.Fatal("Start succeeded despite recorder failure")
	}
	rec.Release()

	h.mu.Lock()
	attached := len(h.recordings)
	h.mu.Unlock()
	if attached != 0 {
		t.Errorf("%d recordings still attached after failed start", attached)
	}
	if !failing.ReleaseCalled {
		t.Error("failed recording was not released")
	}
}

func TestStopWithoutStart(t *testing.T) {
	h, _ := newTestHost(t)
	rec, err := h.NewRecording(ports.RecordingSettings{Path: "/replays/Game_replay.mp4"})
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	if err := rec.Stop(); err == nil {
		t.Error("Stop before Start succeeded")
	}
}
