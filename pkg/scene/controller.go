// Package scene owns the dedicated replay scene and its sink inside the
// host's graph and runs the switch, replay, switch-back sequence.
package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/replaycap/pkg/ports"
)

const (
	// Name is the dedicated scene replays are shown in.
	Name = "Replay"

	// SinkName is the programmatic source inside the replay scene that
	// playback emits into.
	SinkName = "ReplaySource"

	// SinkKind is the host source kind of the replay sink: a media consumer
	// that renders whatever is pushed into it.
	SinkKind = "media_consumer"
)

// ErrSceneNotFound mirrors the host's sentinel for a missing program switch
// target so callers can classify it without importing ports.
var ErrSceneNotFound = ports.ErrSceneNotFound

// Replayer runs the two playback legs of a replay. *playback.Player
// implements it.
type Replayer interface {
	SaveToFile(ctx context.Context, scene string) error
	PlayLive(ctx context.Context, scene string) error
}

// Controller manages the replay scene. All methods are safe for concurrent
// use as long as the host is.
type Controller struct {
	host     ports.Host
	replayer Replayer
	logger   ports.Logger
}

// NewController creates a controller driving the given replayer.
func NewController(host ports.Host, replayer Replayer, logger ports.Logger) *Controller {
	return &Controller{host: host, replayer: replayer, logger: logger}
}

// EnsureSceneAndSink creates the replay scene and its sink if either is
// missing. It is idempotent; after a nil return both exist.
func (c *Controller) EnsureSceneAndSink() error {
	if !c.host.SceneExists(Name) {
		if err := c.host.CreateScene(Name); err != nil {
			return fmt.Errorf("create scene %s: %w", Name, err)
		}
		c.logger.Info("created scene %s", Name)
	}

	if sink, ok := c.host.FindSink(SinkName); ok {
		sink.Release()
		return nil
	}
	if err := c.host.CreateSink(Name, SinkKind, SinkName); err != nil {
		return fmt.Errorf("create sink %s in %s: %w", SinkName, Name, err)
	}
	c.logger.Info("created sink %s in scene %s", SinkName, Name)
	return nil
}

// PlayAndReturn switches the program to the replay scene, saves the scene's
// replay to file, plays it live, and switches back to the previous program
// scene. The switch back is attempted even when a playback leg fails; leg
// and restore errors are joined.
func (c *Controller) PlayAndReturn(ctx context.Context, sceneName string) error {
	previous := c.host.ProgramScene()

	if err := c.host.SetProgramScene(Name); err != nil {
		return fmt.Errorf("switch program to %s: %w", Name, err)
	}

	var errs []error
	if err := c.replayer.SaveToFile(ctx, sceneName); err != nil {
		errs = append(errs, err)
	}
	if err := c.replayer.PlayLive(ctx, sceneName); err != nil {
		errs = append(errs, err)
	}

	if previous != "" {
		if err := c.host.SetProgramScene(previous); err != nil {
			errs = append(errs, fmt.Errorf("switch program back to %s: %w", previous, err))
		}
	}

	return errors.Join(errs...)
}
