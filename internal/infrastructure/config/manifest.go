package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"time"

	"golang.org/x/image/colornames"
)

// Manifest describes the rooms and sprites of a game, loaded from YAML
type Manifest struct {
	Rooms []RoomSpec `yaml:"rooms"`
}

// RoomSpec describes one room
type RoomSpec struct {
	Name       string       `yaml:"name"`
	Background string       `yaml:"background"` // SVG 1.1 color name, e.g. "midnightblue"
	Debug      bool         `yaml:"debug"`
	Sprites    []SpriteSpec `yaml:"sprites"`
}

// SpriteSpec describes one placed sprite
type SpriteSpec struct {
	Name      string         `yaml:"name"`
	CopyOf    string         `yaml:"copy_of"` // share frames with an earlier sprite of the same room
	Frames    []string       `yaml:"frames"`
	Width     int            `yaml:"width"`
	Height    int            `yaml:"height"`
	Rotation  int            `yaml:"rotation"`
	Pivot     Point          `yaml:"pivot"`
	Position  Position       `yaml:"position"`
	Zoom      float64        `yaml:"zoom"`
	Animation *AnimationSpec `yaml:"animation"`
}

// Point is an integer pixel coordinate
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Position is a screen position
type Position struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// AnimationSpec is the frame range a sprite starts animating once its room is loaded
type AnimationSpec struct {
	Start      int `yaml:"start"`
	End        int `yaml:"end"`
	IntervalMS int `yaml:"interval_ms"`
}

// Interval returns the frame interval as a duration
func (a AnimationSpec) Interval() time.Duration {
	return time.Duration(a.IntervalMS) * time.Millisecond
}

// BackgroundColor resolves the background color name
func (r RoomSpec) BackgroundColor() (color.Color, bool) {
	if r.Background == "" {
		return nil, false
	}
	c, ok := colornames.Map[strings.ToLower(r.Background)]
	return c, ok
}

// Room returns the room with the given name
func (m *Manifest) Room(name string) (RoomSpec, bool) {
	for _, r := range m.Rooms {
		if r.Name == name {
			return r, true
		}
	}
	return RoomSpec{}, false
}

// Validate checks the structural rules of a manifest and fills in defaults
func (m *Manifest) Validate() error {
	if len(m.Rooms) == 0 {
		return errors.New("manifest has no rooms")
	}

	var errs []error
	rooms := make(map[string]bool)
	for ri := range m.Rooms {
		room := &m.Rooms[ri]
		if room.Name == "" {
			errs = append(errs, fmt.Errorf("room %d has no name", ri))
		} else if rooms[room.Name] {
			errs = append(errs, fmt.Errorf("duplicate room %q", room.Name))
		}
		rooms[room.Name] = true

		if _, ok := room.BackgroundColor(); room.Background != "" && !ok {
			errs = append(errs, fmt.Errorf("room %q: unknown background color %q", room.Name, room.Background))
		}

		frames := make(map[string]int)
		for si := range room.Sprites {
			sp := &room.Sprites[si]
			if sp.Zoom == 0 {
				sp.Zoom = 1
			}
			if err := validateSprite(sp, frames); err != nil {
				errs = append(errs, fmt.Errorf("room %q: %w", room.Name, err))
			}
			if sp.Name != "" {
				if _, dup := frames[sp.Name]; dup {
					errs = append(errs, fmt.Errorf("room %q: duplicate sprite %q", room.Name, sp.Name))
				}
				frames[sp.Name] = frameCount(sp, frames)
			}
		}
	}
	return errors.Join(errs...)
}

func frameCount(sp *SpriteSpec, known map[string]int) int {
	if sp.CopyOf != "" {
		return known[sp.CopyOf]
	}
	return len(sp.Frames)
}

func validateSprite(sp *SpriteSpec, known map[string]int) error {
	if sp.Name == "" {
		return errors.New("sprite has no name")
	}
	if sp.CopyOf != "" {
		if _, ok := known[sp.CopyOf]; !ok {
			return fmt.Errorf("sprite %q copies unknown sprite %q", sp.Name, sp.CopyOf)
		}
		if len(sp.Frames) > 0 {
			return fmt.Errorf("sprite %q sets both copy_of and frames", sp.Name)
		}
	} else if len(sp.Frames) == 0 {
		return fmt.Errorf("sprite %q has no frames", sp.Name)
	}
	if sp.Width <= 0 || sp.Height <= 0 {
		return fmt.Errorf("sprite %q has invalid size %dx%d", sp.Name, sp.Width, sp.Height)
	}
	if a := sp.Animation; a != nil {
		n := frameCount(sp, known)
		if a.Start < 0 || a.Start > a.End || a.End >= n || a.IntervalMS < 0 {
			return fmt.Errorf("sprite %q: animation [%d,%d] every %dms outside %d frames", sp.Name, a.Start, a.End, a.IntervalMS, n)
		}
	}
	return nil
}
