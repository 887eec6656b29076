// Package platform provides the window and clock backends the engine runs on:
// ebiten for a real window and render loop, and headless stand-ins for tests and CI.
package platform

import (
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// WindowOptions are applied when a window opens
type WindowOptions struct {
	Title   string
	Width   int
	Height  int
	Visible bool
	Taskbar bool
}

// EbitenWindow controls ebiten's single native window
type EbitenWindow struct {
	mu   sync.Mutex
	opts WindowOptions
}

// NewEbitenWindow creates the window controller. Nothing happens until Open.
func NewEbitenWindow() *EbitenWindow {
	return &EbitenWindow{}
}

// Open applies title and size. Visibility and taskbar presence take effect when the
// clock starts running the game.
func (w *EbitenWindow) Open(opts WindowOptions) error {
	w.mu.Lock()
	w.opts = opts
	w.mu.Unlock()

	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return nil
}

// SetSize resizes the native window
func (w *EbitenWindow) SetSize(width, height int) {
	w.mu.Lock()
	w.opts.Width, w.opts.Height = width, height
	w.mu.Unlock()
	ebiten.SetWindowSize(width, height)
}

// Size returns the actual native window size
func (w *EbitenWindow) Size() (int, int) {
	return ebiten.WindowSize()
}

// SetTitle changes the window title
func (w *EbitenWindow) SetTitle(title string) {
	w.mu.Lock()
	w.opts.Title = title
	w.mu.Unlock()
	ebiten.SetWindowTitle(title)
}

func (w *EbitenWindow) options() WindowOptions {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opts
}

// runOptions maps the window options onto ebiten's start-up options
func (w *EbitenWindow) runOptions() *ebiten.RunGameOptions {
	opts := w.options()
	return &ebiten.RunGameOptions{
		SkipTaskbar:   !opts.Taskbar,
		InitUnfocused: !opts.Visible,
	}
}

// HeadlessWindow records what the engine asked of a window without opening one
type HeadlessWindow struct {
	mu      sync.Mutex
	opts    WindowOptions
	opened  int
	resizes int
}

// NewHeadlessWindow creates a window stand-in
func NewHeadlessWindow() *HeadlessWindow {
	return &HeadlessWindow{}
}

// Open records the options
func (w *HeadlessWindow) Open(opts WindowOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opts = opts
	w.opened++
	return nil
}

// SetSize records a resize
func (w *HeadlessWindow) SetSize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opts.Width, w.opts.Height = width, height
	w.resizes++
}

// Size returns the last size set
func (w *HeadlessWindow) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opts.Width, w.opts.Height
}

// SetTitle records the title
func (w *HeadlessWindow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.opts.Title = title
}

// Options returns the current window options
func (w *HeadlessWindow) Options() WindowOptions {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opts
}

// Opened returns how many times Open was called
func (w *HeadlessWindow) Opened() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.opened
}

// Resizes returns how many times SetSize was called
func (w *HeadlessWindow) Resizes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.resizes
}
