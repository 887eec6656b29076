// Package game provides the scene host that drives the active room and handles
// room transitions safely with respect to the update/draw loop.
package game

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/younwookim/roomshell/internal/application/scene"
	"github.com/younwookim/roomshell/internal/application/state"
	"github.com/younwookim/roomshell/internal/domain/sprite"
)

// DefaultPauseTimeout bounds how long a transition waits for the old room to pause
const DefaultPauseTimeout = 2 * time.Second

var (
	// ErrNullRoom is returned when a transition target is missing
	ErrNullRoom = errors.New("null room")

	// ErrTransitionAborted is returned when the old room could not be paused.
	// The old room stays active and the new one is not installed.
	ErrTransitionAborted = errors.New("room transition aborted")
)

// TickObserver is called after every update with the tick number and the active room
type TickObserver func(tick uint64, room scene.Room)

// Option configures a Host
type Option func(*Host)

// WithPauseTimeout sets the upper bound for pausing the old room during a transition
func WithPauseTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.pauseTimeout = d
	}
}

// WithLogger sets the host's logger
func WithLogger(l *log.Logger) Option {
	return func(h *Host) {
		h.logger = l
	}
}

// WithTickObserver registers fn to run after every update, under the host lock
func WithTickObserver(fn TickObserver) Option {
	return func(h *Host) {
		h.observer = fn
	}
}

// Host implements ebiten.Game and is the only thing that changes which room is active.
//
// Update, Draw and every transition hold the same mutex, so no tick ever observes a
// half-paused old room next to a half-installed new one.
type Host struct {
	mu      sync.Mutex
	current scene.Room
	screenW int
	screenH int
	dt      float64
	tick    uint64

	phase        atomic.Int32
	pauseTimeout time.Duration
	observer     TickObserver
	logger       *log.Logger
}

// New creates a Host with the given initial room.
// A paused initial room is resumed immediately.
func New(initial scene.Room, screenW, screenH int, opts ...Option) (*Host, error) {
	if isNilRoom(initial) {
		return nil, ErrNullRoom
	}
	h := &Host{
		current:      initial,
		screenW:      screenW,
		screenH:      screenH,
		dt:           1.0 / 60.0, // Default to 60 FPS
		pauseTimeout: DefaultPauseTimeout,
		logger:       log.Default().WithPrefix("host"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if initial.State() == state.RoomPaused {
		if err := initial.Resume(); err != nil {
			return nil, fmt.Errorf("failed to resume initial room %s: %w", initial.Name(), err)
		}
	}
	return h, nil
}

// Update updates the current room and handles room-requested transitions.
// Implements ebiten.Game interface.
func (h *Host) Update() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tick++
	next, err := h.current.Update(h.dt)
	if err != nil {
		return err
	}

	if !isNilRoom(next) {
		if err := h.changeLocked(context.Background(), next); err != nil {
			h.logger.Warn("room-requested transition failed", "from", h.current.Name(), "to", next.Name(), "error", err)
		}
	}

	if h.observer != nil {
		h.observer(h.tick, h.current)
	}
	return nil
}

// Draw renders the current room.
// Implements ebiten.Game interface.
func (h *Host) Draw(screen *ebiten.Image) {
	h.DrawTo(screen)
}

// DrawTo renders the current room onto any surface
func (h *Host) DrawTo(screen sprite.Surface) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current.Draw(screen)
}

// Layout returns the game's logical screen dimensions.
// Implements ebiten.Game interface.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.screenW, h.screenH
}

// SetLayout changes the logical screen dimensions
func (h *Host) SetLayout(w, hgt int) {
	h.mu.Lock()
	h.screenW, h.screenH = w, hgt
	h.mu.Unlock()
}

// SetDT sets the delta time used for updates.
// Useful for testing or custom frame rates.
func (h *Host) SetDT(dt float64) {
	h.mu.Lock()
	h.dt = dt
	h.mu.Unlock()
}

// Current returns the active room
func (h *Host) Current() scene.Room {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// Tick returns the number of updates run so far
func (h *Host) Tick() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tick
}

// Phase reports how far an in-flight transition has got. It does not take the host lock.
func (h *Host) Phase() state.TransitionPhase {
	return state.TransitionPhase(h.phase.Load())
}

// ChangeSafely pauses the active room and installs room in its place.
//
// The switch happens only after the old room has fully paused. If that fails, the old room
// stays active and ErrTransitionAborted is returned. The old room is not destroyed; keep a
// reference to it to restore it later.
func (h *Host) ChangeSafely(ctx context.Context, room scene.Room) error {
	if isNilRoom(room) {
		return ErrNullRoom
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.changeLocked(ctx, room)
}

// isNilRoom also catches a nil pointer stored in a non-nil Room interface
func isNilRoom(r scene.Room) bool {
	if r == nil {
		return true
	}
	v := reflect.ValueOf(r)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func (h *Host) changeLocked(ctx context.Context, room scene.Room) error {
	old := h.current
	if room == old {
		return nil
	}

	defer h.phase.Store(int32(state.PhaseIdle))

	h.phase.Store(int32(state.PhasePausing))
	pctx, cancel := context.WithTimeout(ctx, h.pauseTimeout)
	defer cancel()
	if err := old.Pause(pctx); err != nil {
		h.logger.Warn("room transition aborted", "from", old.Name(), "to", room.Name(), "error", err)
		return fmt.Errorf("%w: %w", ErrTransitionAborted, err)
	}

	h.phase.Store(int32(state.PhaseInstalling))
	if room.State() == state.RoomPaused {
		if err := room.Resume(); err != nil {
			if rerr := old.Resume(); rerr != nil {
				h.logger.Error("failed to restore room after aborted transition", "room", old.Name(), "error", rerr)
			}
			h.logger.Warn("room transition aborted", "from", old.Name(), "to", room.Name(), "error", err)
			return fmt.Errorf("%w: %w", ErrTransitionAborted, err)
		}
	}

	h.current = room
	h.logger.Info("room changed", "from", old.Name(), "to", room.Name())
	return nil
}
