package platform

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/roomshell/internal/domain/sprite"
)

var (
	// ErrAlreadyStarted is returned by a second Start call
	ErrAlreadyStarted = errors.New("clock already started")

	// ErrNotStarted is returned by Run before Start
	ErrNotStarted = errors.New("clock not started")

	// ErrInvalidRate is returned for a non-positive framerate
	ErrInvalidRate = errors.New("invalid framerate")
)

// EbitenClock drives an ebiten.Game with ebiten's own tick loop
type EbitenClock struct {
	game    ebiten.Game
	window  *EbitenWindow
	started atomic.Bool
}

// NewEbitenClock creates a clock for game. The window, if given, supplies the start-up
// visibility and taskbar options.
func NewEbitenClock(game ebiten.Game, window *EbitenWindow) *EbitenClock {
	return &EbitenClock{game: game, window: window}
}

// Start sets the target ticks per second
func (c *EbitenClock) Start(framerate int) error {
	if framerate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, framerate)
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	ebiten.SetTPS(framerate)
	return nil
}

// Run blocks until the window is closed, the game terminates or ctx is cancelled
func (c *EbitenClock) Run(ctx context.Context) error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	var opts *ebiten.RunGameOptions
	minimize := false
	if c.window != nil {
		opts = c.window.runOptions()
		minimize = !c.window.options().Visible
	}
	return ebiten.RunGameWithOptions(&runner{Game: c.game, ctx: ctx, minimize: minimize}, opts)
}

// CurrentTPS returns the measured ticks per second
func (c *EbitenClock) CurrentTPS() float64 {
	return ebiten.ActualTPS()
}

// runner stops the ebiten loop when ctx is done
type runner struct {
	ebiten.Game
	ctx      context.Context
	minimize bool
	ticked   bool
}

func (r *runner) Update() error {
	if r.ctx.Err() != nil {
		return ebiten.Termination
	}
	if !r.ticked {
		r.ticked = true
		if r.minimize {
			ebiten.MinimizeWindow()
		}
	}
	return r.Game.Update()
}

// Target is what a TickerClock drives
type Target interface {
	Update() error
	DrawTo(screen sprite.Surface)
}

// TickerOption configures a TickerClock
type TickerOption func(*TickerClock)

// WithMaxTicks stops Run after n ticks. Zero means no limit.
func WithMaxTicks(n uint64) TickerOption {
	return func(c *TickerClock) {
		c.maxTicks = n
	}
}

// WithSurface sets the surface frames are drawn on
func WithSurface(s sprite.Surface) TickerOption {
	return func(c *TickerClock) {
		c.surface = s
	}
}

// TickerClock drives a target from a time.Ticker without a window
type TickerClock struct {
	target   Target
	surface  sprite.Surface
	maxTicks uint64

	mu       sync.Mutex
	interval time.Duration
	started  bool

	ticks   atomic.Uint64
	tpsBits atomic.Uint64
}

// NewTickerClock creates a headless clock for target
func NewTickerClock(target Target, opts ...TickerOption) *TickerClock {
	c := &TickerClock{target: target, surface: &DiscardSurface{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start sets the tick interval from the framerate
func (c *TickerClock) Start(framerate int) error {
	if framerate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, framerate)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true
	c.interval = time.Second / time.Duration(framerate)
	return nil
}

// Run ticks the target until ctx is done, the tick limit is reached or Update fails.
// An ebiten.Termination from Update ends the run without error.
func (c *TickerClock) Run(ctx context.Context) error {
	c.mu.Lock()
	started, interval := c.started, c.interval
	c.mu.Unlock()
	if !started {
		return ErrNotStarted
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	windowStart := time.Now()
	var windowTicks int
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := c.target.Update(); err != nil {
			if errors.Is(err, ebiten.Termination) {
				return nil
			}
			return err
		}
		c.target.DrawTo(c.surface)
		n := c.ticks.Add(1)

		windowTicks++
		if elapsed := time.Since(windowStart); elapsed >= time.Second {
			c.tpsBits.Store(math.Float64bits(float64(windowTicks) / elapsed.Seconds()))
			windowStart = time.Now()
			windowTicks = 0
		}

		if c.maxTicks > 0 && n >= c.maxTicks {
			return nil
		}
	}
}

// CurrentTPS returns the ticks per second measured over the last full second
func (c *TickerClock) CurrentTPS() float64 {
	return math.Float64frombits(c.tpsBits.Load())
}

// Ticks returns how many ticks have run
func (c *TickerClock) Ticks() uint64 {
	return c.ticks.Load()
}

// DiscardSurface counts draws and keeps nothing
type DiscardSurface struct {
	draws atomic.Int64
}

// DrawImage counts the draw
func (s *DiscardSurface) DrawImage(_ *ebiten.Image, _ *ebiten.DrawImageOptions) {
	s.draws.Add(1)
}

// Draws returns the number of images drawn
func (s *DiscardSurface) Draws() int64 {
	return s.draws.Load()
}
