package scene

import (
	"fmt"
	"io/fs"

	"github.com/younwookim/roomshell/internal/domain/sprite"
	"github.com/younwookim/roomshell/internal/infrastructure/config"
)

// FromSpec builds a SpriteRoom from a manifest room. Frame paths resolve against assets.
// Sprites that copy another share its FrameBuffer. Nothing is decoded until Load.
func FromSpec(spec config.RoomSpec, assets fs.FS, opts ...RoomOption) (*SpriteRoom, error) {
	var base []RoomOption
	if c, ok := spec.BackgroundColor(); ok {
		base = append(base, WithBackground(c))
	}
	if spec.Debug {
		base = append(base, WithDebugOverlay())
	}
	r := NewSpriteRoom(spec.Name, append(base, opts...)...)

	built := make(map[string]*sprite.Sprite)
	for _, sp := range spec.Sprites {
		var s *sprite.Sprite
		if sp.CopyOf != "" {
			src, ok := built[sp.CopyOf]
			if !ok {
				r.Close()
				return nil, fmt.Errorf("room %s: sprite %s copies unknown sprite %s", spec.Name, sp.Name, sp.CopyOf)
			}
			s = src.Clone()
			s.SetWidth(sp.Width)
			s.SetHeight(sp.Height)
			s.SetRotation(sp.Rotation)
		} else {
			s = sprite.New(sprite.NewFrameBuffer(assets, sp.Frames...), sp.Width, sp.Height, sp.Rotation)
		}
		s.SetCenter(sp.Pivot.X, sp.Pivot.Y)
		built[sp.Name] = s

		zoom := sp.Zoom
		if zoom == 0 {
			zoom = 1
		}
		p := r.Add(sp.Name, s, sp.Position.X, sp.Position.Y, zoom)
		if a := sp.Animation; a != nil {
			p.Autoplay = &Animation{Start: a.Start, End: a.End, Interval: a.Interval()}
		}
	}
	return r, nil
}
