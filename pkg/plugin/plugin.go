// Package plugin is the host-facing module surface: metadata, load and
// unload, the registered source kind, and resolution of persisted settings
// against the file configuration.
package plugin

import (
	"fmt"
	"strconv"

	"github.com/ideamans/go-l10n"

	"github.com/user/replaycap/pkg/config"
	"github.com/user/replaycap/pkg/engine"
	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/ports"
)

// SourceKindID is the identifier the capture source registers under.
const SourceKindID = "replay_capture"

// Persisted setting keys in the host's private data store. Persisted values
// win over the file configuration so that changes made through the host UI
// survive restarts.
const (
	KeyEnabled         = "enabled"
	KeyOutputDirectory = "output_directory"
)

var version = "1.0.0"

// Name returns the module name the host lists.
func Name() string { return "replaycap" }

// Description returns the one-line module description shown by the host.
func Description() string {
	return l10n.T("Per-scene instant replay capture and playback")
}

// Version returns the module version string.
func Version() string { return version }

// Load wires the engine into the host: resolves the enabled flag and output
// directory, registers the capture source kind and the vendor requests,
// creates the replay scene and its sink, and starts capturing when enabled.
// Any registration failure aborts the load; a half-loaded module is worse
// than a missing one.
func Load(
	host ports.Host,
	outputs ports.RecordingFactory,
	clock ports.Clock,
	alloc frame.Allocator,
	logger ports.Logger,
	cfg config.Config,
) (*engine.Engine, error) {
	if host == nil {
		return nil, fmt.Errorf("plugin: host is required")
	}

	enabled := resolveEnabled(host, cfg)
	outDir := resolveOutputDir(host, cfg)

	eng := engine.New(host, outputs, clock, alloc, logger, outDir)

	if err := host.RegisterSourceKind(captureSourceKind()); err != nil {
		return nil, fmt.Errorf("register source kind: %w", err)
	}
	if err := eng.RegisterVendorRequests(); err != nil {
		return nil, err
	}
	if err := eng.EnsureReplayScene(); err != nil {
		return nil, err
	}

	if enabled {
		eng.SetEnabled(true)
	}
	logger.Info(l10n.F("replay module %s loaded: output directory %s", version, outDir))
	return eng, nil
}

// Unload tears the module down: stops capture, clears every ring, and waits
// for in-flight replay workers. Safe to call with a nil engine, which is
// what a failed Load leaves behind.
func Unload(eng *engine.Engine) {
	if eng == nil {
		return
	}
	eng.Close()
}

// resolveEnabled prefers the persisted host value over the file config.
// Unparseable persisted values fall back to the config default.
func resolveEnabled(host ports.Host, cfg config.Config) bool {
	if raw, ok := host.LoadPersistent(KeyEnabled); ok {
		if v, err := strconv.ParseBool(raw); err == nil {
			return v
		}
	}
	return cfg.Enabled
}

// resolveOutputDir prefers the persisted host value, then the file config,
// then the host's module config directory.
func resolveOutputDir(host ports.Host, cfg config.Config) string {
	if dir, ok := host.LoadPersistent(KeyOutputDirectory); ok && dir != "" {
		return dir
	}
	if cfg.OutputDirectory != "" {
		return cfg.OutputDirectory
	}
	return host.ConfigDir()
}

// captureSource is the host-visible face of the module. Frames reach the
// engine through the raw program tap, so the instance renders nothing.
type captureSource struct{}

func (captureSource) VideoRender() {}
func (captureSource) Destroy()     {}

func captureSourceKind() ports.SourceKind {
	return ports.SourceKind{
		ID:          SourceKindID,
		Role:        ports.RoleVideoFilter,
		DisplayName: func() string { return l10n.T("Replay Capture") },
		Create:      func() ports.SourceInstance { return captureSource{} },
	}
}
