package main

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/charmbracelet/log"

	"github.com/younwookim/roomshell/internal/application/engine"
	"github.com/younwookim/roomshell/internal/application/scene"
	"github.com/younwookim/roomshell/internal/infrastructure/config"
)

// roomSet is every room of a manifest, loaded and ready to switch to
type roomSet struct {
	rooms []*scene.SpriteRoom
	start int
}

// buildRooms creates and loads every room of m. The start room is left animating;
// the others are paused so a transition can resume them.
func buildRooms(ctx context.Context, m *config.Manifest, assets fs.FS, startName string) (*roomSet, error) {
	set := &roomSet{}
	if startName != "" {
		set.start = -1
		for i, spec := range m.Rooms {
			if spec.Name == startName {
				set.start = i
			}
		}
		if set.start < 0 {
			return nil, fmt.Errorf("no room named %q in manifest", startName)
		}
	}

	for i, spec := range m.Rooms {
		r, err := scene.FromSpec(spec, assets, scene.WithRoomLogger(log.Default().WithPrefix("room")))
		if err != nil {
			set.Close()
			return nil, err
		}
		set.rooms = append(set.rooms, r)

		if err := r.Load(ctx); err != nil {
			set.Close()
			return nil, err
		}
		if err := r.Play(); err != nil {
			log.Warn("some animations did not start", "room", spec.Name, "error", err)
		}
		if i != set.start {
			if err := r.Pause(ctx); err != nil {
				set.Close()
				return nil, err
			}
		}
	}
	return set, nil
}

// Start returns the room to run first
func (s *roomSet) Start() *scene.SpriteRoom {
	return s.rooms[s.start]
}

// All returns the rooms in manifest order
func (s *roomSet) All() []*scene.SpriteRoom {
	return s.rooms
}

// Close stops every animation goroutine
func (s *roomSet) Close() {
	for _, r := range s.rooms {
		r.Close()
	}
}

// cycleRooms switches to the next room every interval until ctx is done
func cycleRooms(ctx context.Context, inst *engine.Instance, rooms []*scene.SpriteRoom, every time.Duration, logger *log.Logger) {
	if len(rooms) < 2 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current := inst.Room()
		next := rooms[0]
		for i, r := range rooms {
			if r == current {
				next = rooms[(i+1)%len(rooms)]
				break
			}
		}
		if err := inst.ChangeRoomSafely(ctx, next); err != nil {
			logger.Warn("room change failed", "to", next.Name(), "error", err)
		}
	}
}
