// Package scene defines the Room interface for game scenes.
//
// Each room (title, level, pause screen, etc.) implements Room to handle its own
// update logic and rendering. A host drives exactly one active room at a time and
// pauses it before another is installed.
package scene

import (
	"context"

	"github.com/younwookim/roomshell/internal/application/state"
	"github.com/younwookim/roomshell/internal/domain/sprite"
)

// Room represents a scene: a collection of drawable/updatable entities.
//
// The host delegates Update and Draw calls to the active room. Transitions are
// requested either through the host or by returning a new Room from Update.
type Room interface {
	// Name identifies the room in logs and traces.
	Name() string

	// Update updates the room state.
	// dt is the delta time in seconds (typically 1/60).
	// Returns the next room if a transition is needed, nil to stay on the current room.
	// Returns an error to terminate the game. A paused room does nothing.
	Update(dt float64) (next Room, err error)

	// Draw renders the room.
	Draw(screen sprite.Surface)

	// Pause stops every animation and the room's own ticking without discarding state.
	// It either completes or leaves the room active; it never half-pauses.
	Pause(ctx context.Context) error

	// Resume restarts what Pause stopped.
	Resume() error

	// State reports whether the room is active or paused.
	State() state.RoomState
}
