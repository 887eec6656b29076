// Package engine ties settings, the scene host, a window and a clock into one running game.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/younwookim/roomshell/internal/application/game"
	"github.com/younwookim/roomshell/internal/application/scene"
	"github.com/younwookim/roomshell/internal/infrastructure/config"
	"github.com/younwookim/roomshell/internal/infrastructure/platform"
)

// Window is the native surface the engine opens and resizes
type Window interface {
	Open(opts platform.WindowOptions) error
	SetSize(width, height int)
	Size() (int, int)
	SetTitle(title string)
}

// Clock drives render ticks at a target rate. Start is called exactly once.
type Clock interface {
	Start(framerate int) error
	Run(ctx context.Context) error
	CurrentTPS() float64
}

// Option configures an Instance
type Option func(*Instance)

// WithSettings uses s instead of the defaults
func WithSettings(s config.Settings) Option {
	return func(in *Instance) {
		in.settings = s
	}
}

// WithConfigFile reads settings from name through loader.
// An empty name keeps the defaults.
func WithConfigFile(loader *config.Loader, name string) Option {
	return func(in *Instance) {
		in.loader = loader
		in.configName = name
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(in *Instance) {
		in.logger = l
	}
}

// Instance is the top-level game object
type Instance struct {
	mu       sync.Mutex
	settings config.Settings

	loader     *config.Loader
	configName string

	host   *game.Host
	window Window
	clock  Clock
	logger *log.Logger
}

// New applies the settings, opens the window and starts the clock.
// Malformed settings values are logged and keep their defaults.
func New(host *game.Host, window Window, clock Clock, opts ...Option) (*Instance, error) {
	switch {
	case host == nil:
		return nil, errors.New("engine: host is required")
	case window == nil:
		return nil, errors.New("engine: window is required")
	case clock == nil:
		return nil, errors.New("engine: clock is required")
	}

	in := &Instance{
		settings: config.DefaultSettings(),
		host:     host,
		window:   window,
		clock:    clock,
		logger:   log.Default().WithPrefix("engine"),
	}
	for _, opt := range opts {
		opt(in)
	}

	if in.loader != nil && in.configName != "" {
		in.settings, _ = in.readSettings()
	}

	s := in.settings
	if err := window.Open(platform.WindowOptions{
		Title:   s.Title,
		Width:   s.Width,
		Height:  s.Height,
		Visible: s.Visible,
		Taskbar: s.Taskbar,
	}); err != nil {
		return nil, fmt.Errorf("failed to open window: %w", err)
	}
	host.SetLayout(s.Width, s.Height)
	host.SetDT(1.0 / float64(s.Framerate))

	if err := clock.Start(s.Framerate); err != nil {
		return nil, fmt.Errorf("failed to start clock: %w", err)
	}

	in.logger.Info("engine started", "title", s.Title, "width", s.Width, "height", s.Height, "framerate", s.Framerate)
	return in, nil
}

// readSettings loads the config file, logging every problem. The result is always usable.
// ok is false when the file itself could not be read; malformed values still count as read.
func (in *Instance) readSettings() (s config.Settings, ok bool) {
	s, err := in.loader.LoadSettings(in.configName)
	if err == nil {
		return s, true
	}

	var perr config.ParseErrors
	if errors.As(err, &perr) {
		for _, e := range perr {
			in.logger.Warn("bad config value, keeping default", "line", e.Line, "key", e.Key, "value", e.Value, "error", e.Err)
		}
		return s, true
	}
	in.logger.Warn("failed to read config", "file", in.configName, "error", err)
	return s, false
}

// Run blocks on the clock until it stops or ctx is cancelled
func (in *Instance) Run(ctx context.Context) error {
	return in.clock.Run(ctx)
}

// Title returns the window title
func (in *Instance) Title() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings.Title
}

// Width returns the target width
func (in *Instance) Width() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings.Width
}

// SetWidth sets the target width. The window is not resized.
func (in *Instance) SetWidth(width int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.settings.Width = width
}

// Height returns the target height
func (in *Instance) Height() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings.Height
}

// SetHeight sets the target height. The window is not resized.
func (in *Instance) SetHeight(height int) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.settings.Height = height
}

// ChangeWidth resizes the window to the new width and the current target height
func (in *Instance) ChangeWidth(width int) {
	in.mu.Lock()
	in.settings.Width = width
	w, h := in.settings.Width, in.settings.Height
	in.mu.Unlock()
	in.resize(w, h)
}

// ChangeHeight resizes the window to the current target width and the new height
func (in *Instance) ChangeHeight(height int) {
	in.mu.Lock()
	in.settings.Height = height
	w, h := in.settings.Width, in.settings.Height
	in.mu.Unlock()
	in.resize(w, h)
}

func (in *Instance) resize(w, h int) {
	in.window.SetSize(w, h)
	in.host.SetLayout(w, h)
}

// TargetFramerate returns the configured framerate, not the measured one
func (in *Instance) TargetFramerate() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings.Framerate
}

// CurrentFramerate returns the framerate measured by the clock
func (in *Instance) CurrentFramerate() float64 {
	return in.clock.CurrentTPS()
}

// TaskbarActive reports whether the window shows in the taskbar
func (in *Instance) TaskbarActive() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings.Taskbar
}

// Visible reports whether the window is shown
func (in *Instance) Visible() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings.Visible
}

// Settings returns a copy of the current settings
func (in *Instance) Settings() config.Settings {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.settings
}

// Window returns the window
func (in *Instance) Window() Window {
	return in.window
}

// Host returns the scene host
func (in *Instance) Host() *game.Host {
	return in.host
}

// Room returns the active room
func (in *Instance) Room() scene.Room {
	return in.host.Current()
}

// ChangeRoomSafely pauses the active room and installs room
func (in *Instance) ChangeRoomSafely(ctx context.Context, room scene.Room) error {
	return in.host.ChangeSafely(ctx, room)
}
