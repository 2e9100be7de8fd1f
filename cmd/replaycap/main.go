// Package main provides the CLI entry point for replaycap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/replaycap/pkg/adapters/httpbridge"
	"github.com/user/replaycap/pkg/adapters/logger"
	"github.com/user/replaycap/pkg/adapters/mp4inspect"
	"github.com/user/replaycap/pkg/adapters/mp4recorder"
	"github.com/user/replaycap/pkg/adapters/osfilesystem"
	"github.com/user/replaycap/pkg/adapters/realclock"
	"github.com/user/replaycap/pkg/adapters/simhost"
	"github.com/user/replaycap/pkg/adapters/testpattern"
	"github.com/user/replaycap/pkg/adapters/zerologger"
	"github.com/user/replaycap/pkg/config"
	"github.com/user/replaycap/pkg/engine"
	"github.com/user/replaycap/pkg/frame"
	"github.com/user/replaycap/pkg/plugin"
	"github.com/user/replaycap/pkg/ports"
	"github.com/user/replaycap/pkg/report"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println(l10n.F("replaycap version %s", c.App.Version))
	}

	return &cli.App{
		Name:    "replaycap",
		Usage:   l10n.T("Per-scene instant replay capture and playback"),
		Version: version,
		Commands: []*cli.Command{
			runCommand(),
			inspectCommand(),
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: l10n.T("Run the replay engine inside a simulated host"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   l10n.T("YAML config file path"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   l10n.T("Replay output directory"),
			},
			&cli.IntFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Usage:   l10n.T("Simulation length in seconds"),
			},
			&cli.StringFlag{
				Name:  "http",
				Usage: l10n.T("HTTP bridge listen address (empty: disabled)"),
			},
			&cli.BoolFlag{
				Name:  "replay",
				Usage: l10n.T("Trigger an instant replay halfway through the run"),
			},
			&cli.IntFlag{
				Name:  "switch-every",
				Usage: l10n.T("Switch the program scene every N seconds (0: never)"),
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: l10n.T("Skip SaveAllReplays at the end of the run"),
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: l10n.T("Write a Markdown session report to this path"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   l10n.T("Log level (debug, info, warn, error)"),
			},
			&cli.BoolFlag{
				Name:  "log-json",
				Usage: l10n.T("Emit logs as JSON"),
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"Q"},
				Usage:   l10n.T("Suppress all log output"),
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cli.Exit(l10n.F("Failed to load config: %s", err), 1)
		}
		cfg = loaded
	}

	if c.IsSet("output") {
		cfg.OutputDirectory = c.String("output")
	}
	if c.IsSet("duration") {
		cfg.Harness.DurationSec = c.Int("duration")
	}
	if c.IsSet("http") {
		cfg.Harness.HTTPAddr = c.String("http")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.Bool("log-json") {
		cfg.Log.JSON = true
	}

	log := buildLogger(c.Bool("quiet"), cfg.Log)

	format, err := frame.ParseFormat(cfg.Harness.PixelFormat)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn(l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	recorders := mp4recorder.New()
	log.Debug("recording backend: %s", recorders.Backend())

	host := simhost.New(cfg.Harness.Scenes, cfg.Harness.AudioSources, defaultConfigDir(), recorders, log)

	eng, err := plugin.Load(host, host, realclock.New(), frame.NewHeapAllocator(), log, cfg)
	if err != nil {
		return cli.Exit(l10n.F("Failed to load replay module: %s", err), 1)
	}
	defer plugin.Unload(eng)

	host.SceneChanged = func(string) { eng.HandleSceneChanged() }
	eng.HandleFinishedLoading()

	if addr := cfg.Harness.HTTPAddr; addr != "" {
		bridge := httpbridge.New(host, eng, log)
		go func() {
			if err := bridge.Serve(ctx, addr); err != nil {
				log.Error("http bridge: %v", err)
			}
		}()
		log.Info(l10n.F("listening on %s", addr))
	}

	gen := testpattern.NewGenerator(
		cfg.Harness.Width, cfg.Harness.Height, format, cfg.Harness.FPS,
		config.ParseColor(cfg.Harness.BackgroundColor),
		config.ParseColor(cfg.Harness.BarColor),
		config.ParseColor(cfg.Harness.LabelColor),
	)

	start := time.Now()
	frames := runSimulation(ctx, host, gen, cfg.Harness, c.Bool("replay"), c.Int("switch-every"), log)

	if !c.Bool("no-save") && ctx.Err() == nil {
		host.Dispatch(engine.VendorName, engine.RequestSaveAllReplays, nil)
	}
	eng.Wait()

	st := eng.Status()
	summary := fmt.Sprintf("%d frames in %s, %d scenes cached, %d errors",
		frames, time.Since(start).Round(time.Millisecond), len(st.Scenes), len(st.Errors))
	log.Info(l10n.F("simulation finished: %s", summary))
	for _, msg := range st.Errors {
		log.Warn("%s", msg)
	}

	if path := c.String("report"); path != "" {
		if err := writeReport(path, cfg, st, frames, time.Since(start), recorders.Backend()); err != nil {
			log.Error("write report: %v", err)
		} else {
			log.Info(l10n.F("report written to %s", path))
		}
	}
	return nil
}

// writeReport assembles a Markdown session report from the final engine
// status and the replay files found on disk.
func writeReport(path string, cfg config.Config, st engine.Status, frames int, elapsed time.Duration, backend string) error {
	fs := osfilesystem.New()

	cache := make([]report.SceneCache, 0, len(st.Scenes))
	for _, s := range st.Scenes {
		cache = append(cache, report.SceneCache{
			Scene:       s.Scene,
			VideoFrames: s.VideoFrames,
			AudioFrames: s.AudioFrames,
		})
	}

	var saved []report.SavedFile
	matches, _ := fs.Glob(filepath.Join(st.OutputDirectory, "*_replay.mp4"))
	for _, m := range matches {
		size, err := fs.FileSize(m)
		if err != nil {
			continue
		}
		saved = append(saved, report.SavedFile{Path: m, Size: size})
	}

	summary := report.NewBuilder().
		WithSession(report.SessionInfo{
			DurationMs:   int(elapsed.Milliseconds()),
			FramesFed:    frames,
			Scenes:       cfg.Harness.Scenes,
			AudioSources: cfg.Harness.AudioSources,
			Width:        cfg.Harness.Width,
			Height:       cfg.Harness.Height,
			FPS:          cfg.Harness.FPS,
			PixelFormat:  cfg.Harness.PixelFormat,
			CacheSeconds: engine.CacheSeconds,
			Backend:      backend,
			OutputDir:    st.OutputDirectory,
		}).
		WithCache(cache).
		WithSaved(saved).
		WithErrors(st.Errors).
		Build()

	writer := report.NewWriter(report.NewMarkdownFormatter(), fs)
	return writer.Write(path, summary)
}

// runSimulation pumps test-pattern frames into the host's taps at the
// configured rate, acting as the compositor the engine would tap in a real
// host. Replay triggers go through the vendor bus, the same surface an
// external controller would use.
func runSimulation(ctx context.Context, host *simhost.Host, gen *testpattern.Generator, harness config.HarnessConfig, replayHalfway bool, switchEvery int, log ports.Logger) int {
	total := int(float64(harness.DurationSec) * harness.FPS)
	interval := time.Duration(float64(time.Second) / harness.FPS)
	switchFrames := int(float64(switchEvery) * harness.FPS)
	halfway := total / 2

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sent := 0
	for i := 0; i < total; i++ {
		select {
		case <-ctx.Done():
			return sent
		case <-ticker.C:
		}

		if switchFrames > 0 && i > 0 && i%switchFrames == 0 {
			next := harness.Scenes[(i/switchFrames)%len(harness.Scenes)]
			if err := host.SetProgramScene(next); err != nil {
				log.Warn("switch to %s: %v", next, err)
			}
		}

		program := host.ProgramScene()
		host.DeliverVideo(gen.VideoFrame(program, i))
		for _, src := range harness.AudioSources {
			host.DeliverAudio(src, gen.AudioFrame(src, i))
		}

		if replayHalfway && i == halfway {
			payload := fmt.Sprintf(`{"scene":%q}`, program)
			if resp, ok := host.Dispatch(engine.VendorName, engine.RequestReplayScene, []byte(payload)); ok {
				log.Debug("ReplayScene response: %s", resp)
			}
		}
		sent++
	}
	return sent
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Summarize the tracks of a saved replay file"),
		ArgsUsage: "<file.mp4>",
		Action:    inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit(l10n.T("inspect requires exactly one replay file path"), 1)
	}
	report, err := mp4inspect.InspectFile(c.Args().First())
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	printReport(report)
	return nil
}

func printReport(r mp4inspect.Report) {
	fmt.Println(r.Path)
	fmt.Printf("  brand: %s\n", r.MajorBrand)
	fmt.Printf("  fragmented: %v\n", r.Fragmented)
	for _, tr := range r.Tracks {
		fmt.Printf("  track %d: %s", tr.ID, tr.Kind)
		if tr.Codec != "" {
			fmt.Printf(" (%s)", tr.Codec)
		}
		fmt.Printf(", timescale %d, %d samples, %d ms\n", tr.Timescale, tr.SampleCount, tr.DurationMs)
	}
}

func buildLogger(quiet bool, cfg config.LogConfig) ports.Logger {
	if quiet {
		return logger.NewNoop()
	}
	level := ports.ParseLogLevel(cfg.Level)
	if cfg.JSON {
		return zerologger.New(os.Stderr, level)
	}
	return logger.NewConsole(level)
}

// defaultConfigDir is the sim host's module-config directory. Replays land
// under it when no output directory is configured, mirroring a host that
// gives modules a per-module config path.
func defaultConfigDir() string {
	return filepath.Join(os.TempDir(), "replaycap")
}
