package scene

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"golang.org/x/sync/errgroup"

	"github.com/younwookim/roomshell/internal/application/state"
	"github.com/younwookim/roomshell/internal/domain/sprite"
)

// maxConcurrentLoads bounds how many frame buffers a room decodes at once
const maxConcurrentLoads = 4

// Placement positions a sprite inside a room
type Placement struct {
	Name   string
	Sprite *sprite.Sprite
	X, Y   float64
	Zoom   float64
	Hidden bool

	// Autoplay is started by Play once the room's frames are loaded
	Autoplay *Animation
}

// Animation is a frame range to animate
type Animation struct {
	Start    int
	End      int
	Interval time.Duration
}

// UpdateFunc is the per-tick logic of a SpriteRoom
type UpdateFunc func(r *SpriteRoom, dt float64) (Room, error)

// RoomOption configures a SpriteRoom
type RoomOption func(*SpriteRoom)

// WithUpdate sets the room's per-tick logic
func WithUpdate(fn UpdateFunc) RoomOption {
	return func(r *SpriteRoom) {
		r.onUpdate = fn
	}
}

// WithBackground fills the screen with c before drawing sprites
func WithBackground(c color.Color) RoomOption {
	return func(r *SpriteRoom) {
		r.background = c
	}
}

// WithDebugOverlay prints the room name and tick count in the top-left corner
func WithDebugOverlay() RoomOption {
	return func(r *SpriteRoom) {
		r.debug = true
	}
}

// WithRoomLogger sets the room's logger
func WithRoomLogger(l *log.Logger) RoomOption {
	return func(r *SpriteRoom) {
		r.logger = l
	}
}

// SpriteRoom is a Room made of placed sprites plus optional update logic
type SpriteRoom struct {
	name string

	mu         sync.Mutex
	placements []*Placement
	state      state.RoomState
	stopped    []*sprite.Sprite // sprites Pause stopped, restarted by Resume
	ticks      uint64

	onUpdate   UpdateFunc
	background color.Color
	debug      bool
	logger     *log.Logger
}

// NewSpriteRoom creates an empty, active room
func NewSpriteRoom(name string, opts ...RoomOption) *SpriteRoom {
	r := &SpriteRoom{
		name:   name,
		state:  state.RoomActive,
		logger: log.Default().WithPrefix("room"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the room name
func (r *SpriteRoom) Name() string {
	return r.name
}

// Add places a sprite at (x, y) with the given zoom
func (r *SpriteRoom) Add(name string, s *sprite.Sprite, x, y, zoom float64) *Placement {
	p := &Placement{Name: name, Sprite: s, X: x, Y: y, Zoom: zoom}
	r.mu.Lock()
	r.placements = append(r.placements, p)
	r.mu.Unlock()
	return p
}

// Find returns the first placement with the given name
func (r *SpriteRoom) Find(name string) (*Placement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.placements {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Placements returns a snapshot of the room's placements in draw order
func (r *SpriteRoom) Placements() []*Placement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Placement, len(r.placements))
	copy(out, r.placements)
	return out
}

// Ticks returns how many updates ran while the room was active
func (r *SpriteRoom) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Load decodes every distinct frame buffer used by the room.
// Frames that fail to decode are logged and left invisible; only cancellation is returned.
func (r *SpriteRoom) Load(ctx context.Context) error {
	seen := make(map[*sprite.FrameBuffer]bool)
	var buffers []*sprite.FrameBuffer
	for _, p := range r.Placements() {
		fb := p.Sprite.Frames()
		if !seen[fb] {
			seen[fb] = true
			buffers = append(buffers, fb)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for _, fb := range buffers {
		g.Go(func() error {
			err := fb.Load(gctx)
			var loadErr *sprite.LoadError
			if errors.As(err, &loadErr) {
				r.logger.Warn("frames failed to load", "room", r.name, "indices", loadErr.Indices(), "error", err)
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load room %s: %w", r.name, err)
	}
	return nil
}

// Play starts every placement's Autoplay animation. Call it after Load.
func (r *SpriteRoom) Play() error {
	var errs []error
	for _, p := range r.Placements() {
		if p.Autoplay == nil {
			continue
		}
		a := p.Autoplay
		if err := p.Sprite.StartAnimation(a.Start, a.End, a.Interval); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Update runs the room logic unless the room is paused
func (r *SpriteRoom) Update(dt float64) (Room, error) {
	r.mu.Lock()
	if r.state == state.RoomPaused {
		r.mu.Unlock()
		return nil, nil
	}
	r.ticks++
	r.mu.Unlock()

	if r.onUpdate == nil {
		return nil, nil
	}
	return r.onUpdate(r, dt)
}

// Draw renders every visible placement in order
func (r *SpriteRoom) Draw(screen sprite.Surface) {
	img, isScreen := screen.(*ebiten.Image)
	if isScreen && r.background != nil {
		img.Fill(r.background)
	}

	for _, p := range r.Placements() {
		if p.Hidden {
			continue
		}
		p.Sprite.Draw(screen, p.X, p.Y, p.Zoom)
	}

	if isScreen && r.debug {
		ebitenutil.DebugPrint(img, fmt.Sprintf("%s  tick %d  %.0f TPS", r.name, r.Ticks(), ebiten.ActualTPS()))
	}
}

// Pause stops every running animation, waiting for each driver to acknowledge.
// If any driver fails to acknowledge before ctx is done, the drivers already stopped
// are restarted and the room stays active.
func (r *SpriteRoom) Pause(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == state.RoomPaused {
		return nil
	}

	var stopped []*sprite.Sprite
	for _, p := range r.placements {
		d := p.Sprite.Driver()
		if d.State() != sprite.DriverRunning {
			continue
		}
		if err := d.StopWait(ctx); err != nil {
			d.Resume()
			for _, s := range stopped {
				s.Driver().Resume()
			}
			return fmt.Errorf("failed to pause room %s at %s: %w", r.name, p.Name, err)
		}
		stopped = append(stopped, p.Sprite)
	}

	r.stopped = stopped
	r.state = state.RoomPaused
	r.logger.Debug("room paused", "room", r.name, "animations", len(stopped))
	return nil
}

// Resume restarts the animations Pause stopped
func (r *SpriteRoom) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == state.RoomActive {
		return nil
	}
	for _, s := range r.stopped {
		s.Driver().Resume()
	}
	r.logger.Debug("room resumed", "room", r.name, "animations", len(r.stopped))
	r.stopped = nil
	r.state = state.RoomActive
	return nil
}

// State reports whether the room is active or paused
func (r *SpriteRoom) State() state.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Close ends every sprite's animation goroutine. The room cannot animate afterwards.
func (r *SpriteRoom) Close() {
	for _, p := range r.Placements() {
		p.Sprite.Close()
	}
}

// FrameIndices returns the current frame of every placement, keyed by placement name
func (r *SpriteRoom) FrameIndices() map[string]int {
	out := make(map[string]int)
	for _, p := range r.Placements() {
		out[p.Name] = p.Sprite.CurrentFrame()
	}
	return out
}
