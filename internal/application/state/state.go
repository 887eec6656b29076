// Package state defines the explicit lifecycle states shared by rooms and the host.
package state

// RoomState represents whether a room is driving updates
type RoomState int

const (
	RoomActive RoomState = iota
	RoomPaused
)

// String returns the string representation of the room state
func (s RoomState) String() string {
	switch s {
	case RoomActive:
		return "Active"
	case RoomPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// TransitionPhase is the step a host's room change has reached
type TransitionPhase int

const (
	PhaseIdle TransitionPhase = iota
	PhasePausing
	PhaseInstalling
)

// String returns the string representation of the transition phase
func (p TransitionPhase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhasePausing:
		return "Pausing"
	case PhaseInstalling:
		return "Installing"
	default:
		return "Unknown"
	}
}
