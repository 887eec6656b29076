package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/younwookim/roomshell/internal/application/engine"
	"github.com/younwookim/roomshell/internal/application/game"
	"github.com/younwookim/roomshell/internal/application/trace"
	"github.com/younwookim/roomshell/internal/infrastructure/config"
	"github.com/younwookim/roomshell/internal/infrastructure/platform"
)

const (
	defaultSettingsName = "game.cfg"
	defaultManifestName = "sprites.yaml"
)

type runOptions struct {
	config   string
	manifest string
	assets   string
	room     string
	headless bool
	ticks    uint64
	watch    bool
	trace    string
	traceMax int
	cycle    time.Duration
}

var runFlags runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rooms of a sprite manifest",
	Long: `Load the settings and the sprite manifest, open the window and run the
first room (or --room). Without --config and --manifest the embedded demo is used.

Examples:
  engine run
  engine run --room level --cycle 3s
  engine run --config ./game.cfg --manifest ./sprites.yaml --assets ./art
  engine run --headless --ticks 300 --trace trace.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runEngine(cmd.Context(), runFlags)
	},
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.config, "config", "", "Path to a key=value settings file (default: embedded demo)")
	f.StringVar(&runFlags.manifest, "manifest", "", "Path to a YAML sprite manifest (default: embedded demo)")
	f.StringVar(&runFlags.assets, "assets", "", "Directory frame paths are relative to (default: the manifest's directory)")
	f.StringVar(&runFlags.room, "room", "", "Room to start in (default: the first room)")
	f.BoolVar(&runFlags.headless, "headless", false, "Run without a window")
	f.Uint64Var(&runFlags.ticks, "ticks", 0, "Stop a headless run after this many ticks (0 = until interrupted)")
	f.BoolVar(&runFlags.watch, "watch", false, "Re-apply the settings file when it changes")
	f.StringVar(&runFlags.trace, "trace", "", "Write a per-tick frame trace to this JSON file")
	f.IntVar(&runFlags.traceMax, "trace-ticks", 18000, "Keep only the most recent ticks in the trace (0 = all)")
	f.DurationVar(&runFlags.cycle, "cycle", 0, "Switch to the next room at this interval (0 = never)")
}

func runEngine(parent context.Context, opts runOptions) error {
	logger := log.Default()

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settingsLoader, settingsName, err := settingsSource(opts.config)
	if err != nil {
		return err
	}
	manifestLoader, manifestName, assets, err := manifestSource(opts.manifest, opts.assets)
	if err != nil {
		return err
	}

	manifest, err := manifestLoader.LoadManifest(manifestName)
	if err != nil {
		return err
	}
	rooms, err := buildRooms(ctx, manifest, assets, opts.room)
	if err != nil {
		return err
	}
	defer rooms.Close()

	var recorder *trace.Recorder
	hostOpts := []game.Option{game.WithLogger(logger.WithPrefix("host"))}
	if opts.trace != "" {
		recorder = trace.NewRecorder(trace.WithMaxSamples(opts.traceMax))
		hostOpts = append(hostOpts, game.WithTickObserver(recorder.Observe))
	}
	host, err := game.New(rooms.Start(), 1, 1, hostOpts...)
	if err != nil {
		return fmt.Errorf("failed to create host: %w", err)
	}

	var (
		window engine.Window
		clock  engine.Clock
	)
	if opts.headless {
		window = platform.NewHeadlessWindow()
		clock = platform.NewTickerClock(host, platform.WithMaxTicks(opts.ticks))
	} else {
		w := platform.NewEbitenWindow()
		window = w
		clock = platform.NewEbitenClock(host, w)
	}

	inst, err := engine.New(host, window, clock,
		engine.WithConfigFile(settingsLoader, settingsName),
		engine.WithLogger(logger.WithPrefix("engine")),
	)
	if err != nil {
		return err
	}

	if opts.watch {
		if err := watchSettings(ctx, inst, opts.config); err != nil {
			logger.Warn("settings will not be watched", "error", err)
		}
	}
	if opts.cycle > 0 {
		go cycleRooms(ctx, inst, rooms.All(), opts.cycle, logger)
	}

	runErr := inst.Run(ctx)
	cancel()

	if recorder != nil {
		recorder.Stop()
		if err := recorder.Save(opts.trace); err != nil {
			logger.Error("failed to save trace", "file", opts.trace, "error", err)
		} else {
			logger.Info("trace saved", "file", opts.trace, "samples", recorder.SampleCount())
		}
	}
	return runErr
}

// settingsSource picks the settings file on disk, or the embedded demo when path is empty
func settingsSource(path string) (*config.Loader, string, error) {
	if path == "" {
		fsys, err := fs.Sub(configFS, "configs")
		if err != nil {
			return nil, "", fmt.Errorf("failed to open embedded configs: %w", err)
		}
		return config.NewFSLoader(fsys, "configs"), defaultSettingsName, nil
	}
	return config.NewLoader(filepath.Dir(path)), filepath.Base(path), nil
}

// manifestSource picks the manifest and the filesystem its frame paths resolve against
func manifestSource(path, assetsDir string) (*config.Loader, string, fs.FS, error) {
	var (
		loader *config.Loader
		name   string
		assets fs.FS
	)
	if path == "" {
		fsys, err := fs.Sub(configFS, "configs")
		if err != nil {
			return nil, "", nil, fmt.Errorf("failed to open embedded configs: %w", err)
		}
		loader, name, assets = config.NewFSLoader(fsys, "configs"), defaultManifestName, fsys
	} else {
		dir := filepath.Dir(path)
		loader, name, assets = config.NewLoader(dir), filepath.Base(path), os.DirFS(dir)
	}
	if assetsDir != "" {
		assets = os.DirFS(assetsDir)
	}
	return loader, name, assets, nil
}

func watchSettings(ctx context.Context, inst *engine.Instance, path string) error {
	if path == "" {
		return fmt.Errorf("--watch needs --config")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w, err := config.NewWatcher(abs)
	if err != nil {
		return err
	}
	go func() {
		defer w.Close()
		inst.Watch(ctx, w)
	}()
	return nil
}
