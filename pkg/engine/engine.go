// Package engine ties capture, rings, playback and the replay scene into
// the lifecycle and command surface the host plugin exposes.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/ideamans/go-l10n"

	"github.com/user/replaycap/pkg/capture"
	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/playback"
	"github.com/user/replaycap/pkg/ports"
	"github.com/user/replaycap/pkg/ring"
	"github.com/user/replaycap/pkg/scene"
)

const (
	// CacheSeconds is how much recent footage each scene retains.
	CacheSeconds = 30

	// CaptureFPS is the host's nominal capture rate the capacity is sized
	// for.
	CaptureFPS = 60

	// RingCapacity is the number of frames each per-scene ring holds.
	RingCapacity = CacheSeconds * CaptureFPS

	// maxRetainedErrors bounds the error log.
	maxRetainedErrors = 10
)

// Status is the engine's introspection snapshot, served by the dev-harness
// HTTP bridge and the CLI status report.
type Status struct {
	Enabled         bool              `json:"enabled"`
	Capturing       bool              `json:"capturing"`
	OutputDirectory string            `json:"outputDirectory"`
	Scenes          []ring.SceneStats `json:"scenes"`
	Errors          []string          `json:"errors"`
}

// Engine is the process-wide replay engine instance. It owns the scene
// rings, the capture feeder, the player and the replay scene controller,
// and runs the enable/disable state machine.
type Engine struct {
	host       ports.Host
	registry   *ring.Registry
	feeder     *capture.Feeder
	player     *playback.Player
	controller *scene.Controller
	errlog     *errorLog
	logger     ports.Logger
	outDir     string

	// mu serializes lifecycle transitions; frame-path locking lives in the
	// registry.
	mu      sync.Mutex
	workers sync.WaitGroup
}

// New assembles an engine. The engine starts disabled; the plugin layer
// applies the persisted enabled state after load. A nil alloc falls back to
// the heap allocator.
func New(
	host ports.Host,
	outputs ports.RecordingFactory,
	clock ports.Clock,
	alloc frame.Allocator,
	logger ports.Logger,
	outDir string,
) *Engine {
	registry := ring.NewRegistry(alloc)
	errlog := newErrorLog(maxRetainedErrors)

	e := &Engine{
		host:     host,
		registry: registry,
		errlog:   errlog,
		logger:   logger.WithComponent("engine"),
		outDir:   outDir,
	}

	report := func(err error, context string) {
		errlog.append(fmt.Sprintf("%s: %v", context, err))
	}
	e.feeder = capture.NewFeeder(host, registry, RingCapacity, logger.WithComponent("capture"), report)
	e.player = playback.NewPlayer(registry, host, outputs, clock, logger.WithComponent("playback"), scene.SinkName, outDir)
	e.controller = scene.NewController(host, e.player, logger.WithComponent("scene"))
	return e
}

// SetEnabled drives the lifecycle state machine. Enabling rebuilds the ring
// set from the host's scenes and starts the capture taps; disabling stops
// the taps and drops every cached frame. Repeating the current state is a
// no-op.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.registry.Enabled() == enabled {
		return
	}

	if enabled {
		e.registry.SetEnabled(true)
		e.registry.Rebuild(e.host.Scenes(), RingCapacity)
		e.feeder.Start()
		e.logger.Info(l10n.T("replay capture enabled"))
	} else {
		e.feeder.Stop()
		e.registry.SetEnabled(false)
		e.registry.ClearAll()
		e.logger.Info(l10n.T("replay capture disabled, cache dropped"))
	}
}

// Enabled reports the lifecycle state.
func (e *Engine) Enabled() bool {
	return e.registry.Enabled()
}

// HandleSceneChanged reacts to a program scene switch by making sure the
// new scene has a ring. While disabled this does nothing.
func (e *Engine) HandleSceneChanged() {
	current := e.host.ProgramScene()
	if current == "" {
		return
	}
	e.registry.Ensure(current, RingCapacity)
}

// HandleFinishedLoading reacts to the host finishing a collection load:
// the ring set is reconciled against the new scene list, and capture starts
// if the engine is enabled.
func (e *Engine) HandleFinishedLoading() {
	e.registry.Rebuild(e.host.Scenes(), RingCapacity)
	if e.registry.Enabled() {
		e.feeder.Start()
	}
}

// EnsureReplayScene creates the replay scene and sink if missing.
func (e *Engine) EnsureReplayScene() error {
	return e.controller.EnsureSceneAndSink()
}

// SaveAllReplays writes a replay file for every scene holding both video
// and audio. Scenes failing to save are recorded and skipped; the rest
// still proceed.
func (e *Engine) SaveAllReplays() {
	scenes := e.registry.SavableScenes()
	e.logger.Info(l10n.F("saving replays for %d scenes", len(scenes)))
	for _, name := range scenes {
		if err := e.player.SaveToFile(context.Background(), name); err != nil {
			e.recordFailure(err, fmt.Sprintf("save replay of %s", name))
		}
	}
}

// Errors returns the retained recovered-failure messages, oldest first.
func (e *Engine) Errors() []string {
	return e.errlog.snapshot()
}

// Status returns an introspection snapshot.
func (e *Engine) Status() Status {
	return Status{
		Enabled:         e.registry.Enabled(),
		Capturing:       e.feeder.Running(),
		OutputDirectory: e.outDir,
		Scenes:          e.registry.Stats(),
		Errors:          e.errlog.snapshot(),
	}
}

// Wait blocks until every detached replay worker has finished. Workers are
// not cancellable; this is a drain, not an abort.
func (e *Engine) Wait() {
	e.workers.Wait()
}

// Close disables the engine and drains outstanding replay workers.
func (e *Engine) Close() {
	e.SetEnabled(false)
	e.workers.Wait()
	e.logger.Info(l10n.T("replay engine closed"))
}

// recordFailure logs a recovered failure and retains it for the status
// surface. The engine always keeps running.
func (e *Engine) recordFailure(err error, context string) {
	e.errlog.append(fmt.Sprintf("%s: %v", context, err))
	e.logger.Error(l10n.F("%s: %s", context, err))
}
