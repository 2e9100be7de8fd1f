package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/user/replaycap/pkg/mocks"
)

// stubReplayer records leg order and returns configured errors.
type stubReplayer struct {
	calls   []string
	saveErr error
	liveErr error
}

func (s *stubReplayer) SaveToFile(ctx context.Context, scene string) error {
	s.calls = append(s.calls, "save:"+scene)
	return s.saveErr
}

func (s *stubReplayer) PlayLive(ctx context.Context, scene string) error {
	s.calls = append(s.calls, "live:"+scene)
	return s.liveErr
}

func TestEnsureSceneAndSinkCreatesBoth(t *testing.T) {
	host := mocks.NewHost("Game")
	c := NewController(host, &stubReplayer{}, mocks.NewLogger())

	if err := c.EnsureSceneAndSink(); err != nil {
		t.Fatalf("EnsureSceneAndSink failed: %v", err)
	}

	if len(host.CreateSceneCalls) != 1 || host.CreateSceneCalls[0] != Name {
		t.Errorf("Expected one CreateScene(%q), got %v", Name, host.CreateSceneCalls)
	}
	if len(host.CreateSinkCalls) != 1 {
		t.Fatalf("Expected one CreateSink, got %d", len(host.CreateSinkCalls))
	}
	call := host.CreateSinkCalls[0]
	if call.Scene != Name || call.Kind != SinkKind || call.Name != SinkName {
		t.Errorf("Unexpected CreateSink call: %+v", call)
	}
}

func TestEnsureSceneAndSinkIdempotent(t *testing.T) {
	host := mocks.NewHost("Game")
	c := NewController(host, &stubReplayer{}, mocks.NewLogger())

	if err := c.EnsureSceneAndSink(); err != nil {
		t.Fatalf("First EnsureSceneAndSink failed: %v", err)
	}
	if err := c.EnsureSceneAndSink(); err != nil {
		t.Fatalf("Second EnsureSceneAndSink failed: %v", err)
	}

	if len(host.CreateSceneCalls) != 1 {
		t.Errorf("Expected 1 CreateScene call, got %d", len(host.CreateSceneCalls))
	}
	if len(host.CreateSinkCalls) != 1 {
		t.Errorf("Expected 1 CreateSink call, got %d", len(host.CreateSinkCalls))
	}

	// Probing for the sink must not leak the handle.
	sink := host.Sinks[SinkName].(*mocks.Sink)
	if sink.Released() != 1 {
		t.Errorf("Expected the probe handle to be released once, got %d", sink.Released())
	}
}

func TestEnsureSceneAndSinkCreateSceneFails(t *testing.T) {
	host := mocks.NewHost()
	boom := errors.New("graph locked")
	host.CreateSceneFunc = func(name string) error { return boom }
	c := NewController(host, &stubReplayer{}, mocks.NewLogger())

	err := c.EnsureSceneAndSink()
	if !errors.Is(err, boom) {
		t.Fatalf("Expected creation error, got: %v", err)
	}
}

func TestPlayAndReturnRestoresProgram(t *testing.T) {
	host := mocks.NewHost("Game", Name)
	host.Program = "Game"
	r := &stubReplayer{}
	c := NewController(host, r, mocks.NewLogger())

	if err := c.PlayAndReturn(context.Background(), "Game"); err != nil {
		t.Fatalf("PlayAndReturn failed: %v", err)
	}

	want := []string{Name, "Game"}
	if len(host.SetProgramSceneCalls) != 2 ||
		host.SetProgramSceneCalls[0] != want[0] ||
		host.SetProgramSceneCalls[1] != want[1] {
		t.Errorf("Expected program switches %v, got %v", want, host.SetProgramSceneCalls)
	}
	if host.Program != "Game" {
		t.Errorf("Expected program restored to Game, got %s", host.Program)
	}

	// File save runs before live playback.
	if len(r.calls) != 2 || r.calls[0] != "save:Game" || r.calls[1] != "live:Game" {
		t.Errorf("Unexpected leg order: %v", r.calls)
	}
}

func TestPlayAndReturnRestoresOnPlaybackFailure(t *testing.T) {
	host := mocks.NewHost("Game", Name)
	host.Program = "Game"
	saveErr := errors.New("no cached frames")
	liveErr := errors.New("sink missing")
	r := &stubReplayer{saveErr: saveErr, liveErr: liveErr}
	c := NewController(host, r, mocks.NewLogger())

	err := c.PlayAndReturn(context.Background(), "Game")
	if !errors.Is(err, saveErr) || !errors.Is(err, liveErr) {
		t.Fatalf("Expected both leg errors joined, got: %v", err)
	}

	// Both legs ran despite the first failing, and the program came back.
	if len(r.calls) != 2 {
		t.Errorf("Expected both legs to run, got %v", r.calls)
	}
	if host.Program != "Game" {
		t.Errorf("Expected program restored despite failures, got %s", host.Program)
	}
}

func TestPlayAndReturnInitialSwitchFails(t *testing.T) {
	host := mocks.NewHost("Game")
	host.Program = "Game"
	r := &stubReplayer{}
	c := NewController(host, r, mocks.NewLogger())

	// The replay scene does not exist, so the host rejects the switch.
	err := c.PlayAndReturn(context.Background(), "Game")
	if !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("Expected ErrSceneNotFound, got: %v", err)
	}
	if len(r.calls) != 0 {
		t.Errorf("Playback must not run when the switch fails, got %v", r.calls)
	}
	if host.Program != "Game" {
		t.Errorf("Program must be unchanged, got %s", host.Program)
	}
}

func TestPlayAndReturnNoPreviousScene(t *testing.T) {
	host := mocks.NewHost(Name, "Game")
	host.Program = ""
	r := &stubReplayer{}
	c := NewController(host, r, mocks.NewLogger())

	if err := c.PlayAndReturn(context.Background(), "Game"); err != nil {
		t.Fatalf("PlayAndReturn failed: %v", err)
	}
	if len(host.SetProgramSceneCalls) != 1 || host.SetProgramSceneCalls[0] != Name {
		t.Errorf("Expected a single switch to %s, got %v", Name, host.SetProgramSceneCalls)
	}
}

func TestPlayAndReturnRestoreFailureReported(t *testing.T) {
	host := mocks.NewHost("Game", Name)
	host.Program = "Game"
	r := &stubReplayer{}
	c := NewController(host, r, mocks.NewLogger())

	calls := 0
	host.SetProgramSceneFunc = func(name string) error {
		calls++
		if calls == 2 {
			return ErrSceneNotFound
		}
		return nil
	}

	err := c.PlayAndReturn(context.Background(), "Game")
	if !errors.Is(err, ErrSceneNotFound) {
		t.Fatalf("Expected restore failure to surface, got: %v", err)
	}
}
